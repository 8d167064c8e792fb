package proxy

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/pterm/pterm"

	"github.com/marrowgate/ollm/internal/logger"
)

// routeInfo describes one registered route, grounded on the teacher's
// router.RouteInfo. There is no IsProxy split here — every route this
// proxy serves forwards to a single configured backend, so there is
// nothing analogous to the teacher's multi-endpoint middleware chain to
// distinguish (see DESIGN.md).
type routeInfo struct {
	Handler     http.HandlerFunc
	Description string
	Method      string
	Order       int
}

// routeRegistry collects routes before wiring them onto a mux, so startup
// can print a route table the way the teacher's RouteRegistry does.
type routeRegistry struct {
	routes   map[string]routeInfo
	logger   *logger.StyledLogger
	orderSeq int
}

func newRouteRegistry(log *logger.StyledLogger) *routeRegistry {
	return &routeRegistry{
		routes: make(map[string]routeInfo),
		logger: log,
	}
}

func (r *routeRegistry) register(method, route string, handler http.HandlerFunc, description string) {
	r.routes[method+" "+route] = routeInfo{
		Handler:     handler,
		Description: description,
		Method:      method,
		Order:       r.orderSeq,
	}
	r.orderSeq++
}

func (r *routeRegistry) wireUp(mux *http.ServeMux) {
	for pattern, info := range r.routes {
		mux.HandleFunc(pattern, info.Handler)
	}
	r.logRoutesTable()
}

func (r *routeRegistry) logRoutesTable() {
	if len(r.routes) == 0 {
		return
	}

	type entry struct {
		pattern string
		method  string
		desc    string
		order   int
	}

	entries := make([]entry, 0, len(r.routes))
	for pattern, info := range r.routes {
		entries = append(entries, entry{pattern: pattern, method: info.Method, desc: info.Description, order: info.Order})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	tableData := [][]string{{"ROUTE", "METHOD", "DESCRIPTION"}}
	for _, e := range entries {
		tableData = append(tableData, []string{e.pattern, e.method, e.desc})
	}

	if r.logger != nil {
		r.logger.Info(fmt.Sprintf("registered %d routes", len(entries)))
	}
	tableString, _ := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	fmt.Print(tableString)
}
