package stream

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
	"github.com/marrowgate/ollm/internal/cancel"
)

// Mode selects which Ollama chunk shape the transcoder emits.
type Mode int

const (
	ModeChat Mode = iota
	ModeGenerate
)

// partialCap bounds the partial-content accumulator per spec.md §3's
// StreamState; further appends past this are silently discarded.
const partialCap = 4096

type chatDeltaFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

type completionDeltaFrame struct {
	Choices []struct {
		Text         string  `json:"text"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// Transcoder rewrites a backend SSE body into Ollama NDJSON chunks written
// to w, flushing after every write so the client sees tokens as they arrive.
type Transcoder struct {
	w            io.Writer
	flusher      http.Flusher
	model        string
	mode         Mode
	signal       *cancel.Signal
	chunkTimeout time.Duration
	start        time.Time
	chunkCount   int
	partial      []byte
	deltaChars   int
}

func NewTranscoder(w io.Writer, model string, mode Mode, signal *cancel.Signal, chunkTimeout time.Duration) *Transcoder {
	var flusher http.Flusher
	if f, ok := w.(http.Flusher); ok {
		flusher = f
	}
	return &Transcoder{
		w:            w,
		flusher:      flusher,
		model:        model,
		mode:         mode,
		signal:       signal,
		chunkTimeout: chunkTimeout,
		start:        time.Now(),
	}
}

// Run drives the transcode loop until exactly one terminator has been
// written: a final chunk, an error chunk, or a cancel chunk (spec.md §3's
// StreamState invariant).
func (t *Transcoder) Run(body io.Reader) error {
	fr := newFrameReader(body, t.signal, t.chunkTimeout)

	for {
		payload, err := fr.next()
		if err != nil {
			switch {
			case errors.Is(err, ErrStreamDone), errors.Is(err, io.EOF):
				return t.emitFinal()
			case apperr.IsCancelled(err):
				return t.emitCancel()
			default:
				return t.emitError(err)
			}
		}

		t.chunkCount++

		delta, finishReason, parseErr := t.extractDelta(payload)
		if parseErr != nil {
			return t.emitError(parseErr)
		}

		if delta != "" {
			t.appendPartial(delta)
			if err := t.emitDelta(delta); err != nil {
				return err
			}
		}

		if finishReason != "" {
			return t.emitFinal()
		}
	}
}

func (t *Transcoder) extractDelta(payload string) (delta, finishReason string, err error) {
	if t.mode == ModeChat {
		var frame chatDeltaFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			return "", "", apperr.NewInternal("parsing stream frame: %v", err)
		}
		if len(frame.Choices) == 0 {
			return "", "", nil
		}
		if frame.Choices[0].FinishReason != nil {
			finishReason = *frame.Choices[0].FinishReason
		}
		return frame.Choices[0].Delta.Content, finishReason, nil
	}

	var frame completionDeltaFrame
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		return "", "", apperr.NewInternal("parsing stream frame: %v", err)
	}
	if len(frame.Choices) == 0 {
		return "", "", nil
	}
	if frame.Choices[0].FinishReason != nil {
		finishReason = *frame.Choices[0].FinishReason
	}
	return frame.Choices[0].Text, finishReason, nil
}

func (t *Transcoder) appendPartial(delta string) {
	// deltaChars tracks the full accumulated character count across the
	// whole stream, uncapped, since partial itself is capped at partialCap
	// and must not be the source of the eval_count estimate.
	t.deltaChars += len(delta)

	remaining := partialCap - len(t.partial)
	if remaining <= 0 {
		return
	}
	if len(delta) > remaining {
		delta = delta[:remaining]
	}
	t.partial = append(t.partial, delta...)
}

func (t *Transcoder) emitDelta(content string) error {
	var chunk map[string]any
	if t.mode == ModeChat {
		chunk = map[string]any{
			"model":      t.model,
			"created_at": isoNow(),
			"message":    map[string]any{"role": "assistant", "content": content},
			"done":       false,
		}
	} else {
		chunk = map[string]any{
			"model":      t.model,
			"created_at": isoNow(),
			"response":   content,
			"done":       false,
		}
	}
	return t.writeChunk(chunk)
}

func (t *Transcoder) emitFinal() error {
	elapsed := time.Since(t.start)
	evalCount := t.deltaChars / 4
	promptDuration, evalDuration := splitEven(elapsed, evalCount)

	chunk := map[string]any{
		"model":                t.model,
		"created_at":           isoNow(),
		"done":                 true,
		"total_duration":       elapsed.Nanoseconds(),
		"load_duration":        0,
		"prompt_eval_count":    0,
		"prompt_eval_duration": promptDuration,
		"eval_count":           evalCount,
		"eval_duration":        evalDuration,
	}
	if t.mode == ModeChat {
		chunk["message"] = map[string]any{"role": "assistant", "content": ""}
	} else {
		chunk["response"] = ""
	}
	return t.writeChunk(chunk)
}

func (t *Transcoder) emitError(err error) error {
	chunk := map[string]any{
		"model":      t.model,
		"created_at": isoNow(),
		"error":      apperr.AsProxyError(err).Message,
		"done":       true,
	}
	return t.writeChunk(chunk)
}

func (t *Transcoder) emitCancel() error {
	chunk := map[string]any{
		"model":           t.model,
		"created_at":      isoNow(),
		"done":            true,
		"cancelled":       true,
		"partial_response": true,
	}
	if t.mode == ModeChat {
		chunk["message"] = map[string]any{"role": "assistant", "content": string(t.partial)}
	} else {
		chunk["response"] = string(t.partial)
	}
	return t.writeChunk(chunk)
}

func (t *Transcoder) writeChunk(chunk map[string]any) error {
	line, err := json.Marshal(chunk)
	if err != nil {
		return apperr.NewInternal("serialising stream chunk: %v", err)
	}
	line = append(line, '\n')
	if _, err := t.w.Write(line); err != nil {
		return apperr.NewInternal("writing stream chunk: %v", err)
	}
	if t.flusher != nil {
		t.flusher.Flush()
	}
	return nil
}

// splitEven is the streaming-terminator equivalent of translate's
// splitDuration: there is no prompt token count available mid-stream, so
// the 50/50 fallback always applies.
func splitEven(total time.Duration, _ int) (promptDuration, evalDuration int64) {
	totalNanos := total.Nanoseconds()
	half := totalNanos / 2
	return half, totalNanos - half
}

func isoNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
