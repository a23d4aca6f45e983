// Package server serves Gantry's API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ventrath/gantry/pkg/api"
	"github.com/ventrath/gantry/pkg/api/http/common"
	"github.com/ventrath/gantry/pkg/structs"
)

const (
	wait = 30 * time.Second
)

type Server struct {
	addr       string
	static     string
	debug      bool
	svc        api.API
	exit       chan os.Signal
	httpserver *http.Server
}

func NewServer(addr, static string, debug bool) *Server {
	return &Server{
		addr:   addr,
		static: static,
		debug:  debug,
		exit:   make(chan os.Signal, 1),
	}
}

func (s *Server) ServeForever(svc api.API) error {
	s.svc = svc

	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc(common.API_RUNS, s.Runs).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc(common.API_JOBS, s.Jobs).Methods(http.MethodGet)
	router.HandleFunc(common.API_STEPS, s.Steps).Methods(http.MethodGet)
	router.HandleFunc(common.API_ARTIFACTS, s.Artifacts).Methods(http.MethodGet)

	router.HandleFunc(common.API_PAUSE, s.ToggleOp(s.svc.Pause)).Methods(http.MethodPatch)
	router.HandleFunc(common.API_UNPAUSE, s.ToggleOp(s.svc.Unpause)).Methods(http.MethodPatch)
	router.HandleFunc(common.API_SKIP, s.ToggleOp(s.svc.Skip)).Methods(http.MethodPatch)
	router.HandleFunc(common.API_KILL, s.ToggleOp(s.svc.Kill)).Methods(http.MethodPatch)
	router.HandleFunc(common.API_RETRY, s.ToggleOp(s.svc.Retry)).Methods(http.MethodPatch)

	if s.static != "" {
		log.Println("Serving static files from", s.static)
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.static)))
	}

	if s.debug {
		log.Println("Debug enabled, adding per-request logging middleware")
		router.Use(loggingMiddleware)
	}

	s.httpserver = &http.Server{
		Handler:      router,
		Addr:         s.addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		log.Println("Listening on", s.httpserver.Addr)
		if err := s.httpserver.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	signal.Notify(s.exit, os.Interrupt)
	defer s.Close()
	<-s.exit

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	s.httpserver.Shutdown(ctx)
	os.Exit(0)
	return nil
}

func (s *Server) Close() error {
	s.exit <- os.Interrupt
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func (s *Server) Runs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getRuns(w, r)
	case http.MethodPost:
		s.createRun(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	crr := &structs.CreateRunRequest{}
	err := unmarshalJson(w, r, crr)
	if err != nil {
		return
	}

	resp, err := s.svc.CreateRun(crr)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) getRuns(w http.ResponseWriter, r *http.Request) {
	s.getList(w, r, func(q *structs.Query) (interface{}, int, error) {
		items, err := s.svc.Runs(q)
		return items, len(items), err
	})
}

func (s *Server) Jobs(w http.ResponseWriter, r *http.Request) {
	s.getList(w, r, func(q *structs.Query) (interface{}, int, error) {
		items, err := s.svc.Jobs(q)
		return items, len(items), err
	})
}

func (s *Server) Steps(w http.ResponseWriter, r *http.Request) {
	s.getList(w, r, func(q *structs.Query) (interface{}, int, error) {
		items, err := s.svc.Steps(q)
		return items, len(items), err
	})
}

func (s *Server) Artifacts(w http.ResponseWriter, r *http.Request) {
	s.getList(w, r, func(q *structs.Query) (interface{}, int, error) {
		items, err := s.svc.Artifacts(q)
		return items, len(items), err
	})
}

func (s *Server) getList(w http.ResponseWriter, r *http.Request, fn func(q *structs.Query) (interface{}, int, error)) {
	q := &structs.Query{}
	err := unmarshalQuery(w, r, q)
	if err != nil {
		return
	}

	items, count, err := fn(q)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}
	if s.debug {
		log.Println(r.URL, "returned", count, "items")
	}

	err = json.NewEncoder(w).Encode(items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) ToggleOp(fn func([]*structs.ToggleRequest) (int64, error)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		tog := []*structs.ToggleRequest{}
		err := unmarshalJson(w, r, &tog)
		if err != nil {
			return
		}

		updated, err := fn(tog)
		if err != nil {
			http.Error(w, err.Error(), mapError(err))
			return
		}

		err = json.NewEncoder(w).Encode(&common.UpdateResponse{Updated: updated})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
