package version

import (
	"fmt"
	"log"
	"strings"

	"github.com/marrowgate/ollm/theme"
)

var (
	Name        = "ollm"
	Authors     = "the ollm contributors"
	Description = "Ollama-to-LM-Studio translation proxy"
	Version     = "v0.1.0"
	Commit      = "none"
	Date        = "nowish"
	User        = "local"
)

const (
	GithubHomeText  = "github.com/marrowgate/ollm"
	GithubHomeUri   = "https://github.com/marrowgate/ollm"
	GithubLatestUri = "https://github.com/marrowgate/ollm/releases/latest"
)

func PrintVersionInfo(extendedInfo bool, vlog *log.Logger) {
	githubUri := theme.Hyperlink(GithubHomeUri, GithubHomeText)
	latestUri := theme.Hyperlink(GithubLatestUri, Version)
	padLatest := fmt.Sprintf("%*s", 1-len(Version), "")
	padBuffer := fmt.Sprintf("%*s", 2, "")

	var b strings.Builder

	b.WriteString(theme.ColourSplash(`
╔────────────────────────────────────────────────────────╗
│    ___  _ _             ___                            │
│   / _ \| | |_ __ ___    / _ \_ __ _____  ___   _        │
│  | | | | | | '_ \` + "`" + ` _ \  | |_) | '__/ _ \ \/ / | | |       │
│  | |_| | | | | | | | | |  _ <| | | (_) >  <| |_| |      │
│   \___/|_|_|_| |_| |_| |_| \_\_|  \___/_/\_\\__, |      │
│                                              |___/       │` + "\n"))

	b.WriteString(theme.ColourSplash("│ "))
	b.WriteString(theme.StyleUrl(githubUri))
	b.WriteString(padLatest)
	b.WriteString(theme.ColourVersion(latestUri))
	b.WriteString(padBuffer)
	b.WriteString(theme.ColourSplash(" │\n"))
	b.WriteString(theme.ColourSplash("╚────────────────────────────────────────────────────────╝"))

	if extendedInfo {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(" Commit: %s\n", Commit))
		b.WriteString(fmt.Sprintf("  Built: %s\n", Date))
		b.WriteString(fmt.Sprintf("  Using: %s\n", User))
	}

	vlog.Println(b.String())
}
