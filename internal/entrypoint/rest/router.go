// Package rest exposes the dispatcher over HTTP.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"bankledger/internal/dispatch"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type invoker interface {
	Invoke(ctx context.Context, op string, payload []byte) dispatch.Response
}

type Server struct {
	invoker invoker
	log     logrus.FieldLogger
}

func NewServer(invoker invoker, log logrus.FieldLogger) *Server {
	return &Server{invoker: invoker, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/invoke/{operation}", s.invoke)

		r.Get("/accounts", s.listAccounts)
		r.Post("/accounts", s.forward(string(dispatch.CreateAccount), false))

		r.Route("/accounts/{accountId}", func(r chi.Router) {
			r.Get("/", s.queryAccount)
			r.Get("/transactions", s.forward(string(dispatch.FetchTransactions), true))
			r.Post("/deposit", s.forward(string(dispatch.Deposit), true))
			r.Post("/withdraw", s.forward(string(dispatch.Withdraw), true))
		})
	})

	return r
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	payload, err := readBody(r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	s.respond(w, s.invoker.Invoke(r.Context(), chi.URLParam(r, "operation"), payload))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if start == "" && end == "" {
		s.respond(w, s.invoker.Invoke(r.Context(), string(dispatch.FetchAllAccount), nil))
		return
	}

	payload, _ := json.Marshal(dispatch.RangeArgs{StartAccountID: start, EndAccountID: end})
	s.respond(w, s.invoker.Invoke(r.Context(), string(dispatch.QueryAccounts), payload))
}

func (s *Server) queryAccount(w http.ResponseWriter, r *http.Request) {
	payload, _ := json.Marshal(dispatch.AccountArgs{AccountID: chi.URLParam(r, "accountId")})
	resp := s.invoker.Invoke(r.Context(), string(dispatch.QueryAccount), payload)
	if resp.OK() && len(resp.Payload) == 0 {
		resp.Message = "account not found"
		writeJSON(w, http.StatusNotFound, resp)
		return
	}
	s.respond(w, resp)
}

// forward sends the request body to op, adding the accountId path parameter
// when withAccountID is set.
func (s *Server) forward(op string, withAccountID bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := readBody(r)
		if err != nil {
			s.badRequest(w, err)
			return
		}

		if withAccountID {
			payload, err = setField(payload, "accountId", chi.URLParam(r, "accountId"))
			if err != nil {
				s.badRequest(w, err)
				return
			}
		}

		s.respond(w, s.invoker.Invoke(r.Context(), op, payload))
	}
}

func (s *Server) respond(w http.ResponseWriter, resp dispatch.Response) {
	writeJSON(w, statusFor(resp.Err()), resp)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, dispatch.Response{
		Status:  dispatch.StatusError,
		Message: err.Error(),
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		s.log.WithFields(logrus.Fields{
			"requestId": middleware.GetReqID(r.Context()),
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"duration":  time.Since(started).String(),
		}).Info("http request")
	})
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("request body too large")
	}
	return body, nil
}

func setField(payload []byte, name, value string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if payload = bytes.TrimSpace(payload); len(payload) > 0 {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, err
		}
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	fields[name] = raw

	return json.Marshal(fields)
}
