package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lineagehub/lineage/internal/graph"
	"github.com/lineagehub/lineage/internal/query"
)

var serveQueryCmd = &cobra.Command{
	Use:   "serve-query",
	Short: "Load the cache, watch it for changes, and serve lineage query operations as JSON lines over stdin/stdout",
	RunE:  runServeQuery,
}

// request is one line of stdin input: an operation name plus its
// operation-specific arguments.
type request struct {
	Op        string `json:"op"`
	ID        string `json:"id"`
	Column    string `json:"column"`
	Direction string `json:"direction"`
	Depth     int    `json:"depth"`
	UpDepth   int    `json:"upstream_depth"`
	DownDepth int    `json:"downstream_depth"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Schema    string `json:"schema"`
	Kind      string `json:"kind"`
	Q         string `json:"q"`
	Limit     int    `json:"limit"`
}

type response struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func runServeQuery(cmd *cobra.Command, args []string) error {
	gh := graph.NewHandle()
	ch := newCacheHandle(gh)

	if err := ch.Reload(); err != nil {
		logrus.WithError(err).Warn("initial cache load failed, serving NotFound until a reload succeeds")
	}

	stop := make(chan struct{})
	if err := ch.Watch(stop); err != nil {
		logrus.WithError(err).Warn("cache file watch could not start; reload only happens on restart")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stop)
		os.Exit(0)
	}()

	adapter := query.New(gh)
	scanner := bufio.NewScanner(os.Stdin)
	enc := json.NewEncoder(os.Stdout)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			enc.Encode(response{Error: fmt.Sprintf("invalid request: %v", err)})
			continue
		}
		enc.Encode(dispatch(adapter, req))
	}
	return scanner.Err()
}

func dispatch(a *query.Adapter, req request) response {
	switch req.Op {
	case "get_object":
		obj, err := a.GetObject(req.ID)
		return toResponse(obj, err)
	case "list_objects":
		page, err := a.ListObjects(req.Page, req.PageSize, req.Schema, req.Kind)
		return toResponse(page, err)
	case "full_lineage":
		result, err := a.FullLineage(req.ID, req.UpDepth, req.DownDepth)
		return toResponse(result, err)
	case "forward_lineage":
		result, err := a.ForwardLineage(req.ID, req.Depth)
		return toResponse(result, err)
	case "backward_lineage":
		result, err := a.BackwardLineage(req.ID, req.Depth)
		return toResponse(result, err)
	case "column_lineage":
		result, err := a.ColumnLineage(req.ID, req.Column, graph.Direction(req.Direction), req.Depth)
		return toResponse(result, err)
	case "object_column_lineage":
		result, err := a.ObjectColumnLineage(req.ID)
		return toResponse(result, err)
	case "search":
		result, err := a.Search(req.Q, req.Limit, req.Schema, req.Kind)
		return toResponse(result, err)
	case "schemas":
		result, err := a.Schemas()
		return toResponse(result, err)
	case "kinds":
		result, err := a.Kinds()
		return toResponse(result, err)
	case "statistics":
		result, err := a.Statistics()
		return toResponse(result, err)
	default:
		return response{Error: fmt.Sprintf("unknown op %q", req.Op)}
	}
}

func toResponse(result interface{}, err error) response {
	if err != nil {
		return response{Error: err.Error()}
	}
	return response{OK: true, Result: result}
}
