// Package server exposes the cache and its services over HTTP for local
// inspection and control.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache"
	"github.com/tmitchel/chancache/cache"
	"github.com/tmitchel/chancache/events"
	"github.com/urfave/negroni"
)

type serverError struct {
	Error   error
	Message string
	Status  int
}

// errHandle provides a less verbose way to handle errors
type errHandler func(http.ResponseWriter, *http.Request) *serverError

func (fn errHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		if err.Status >= http.StatusInternalServerError {
			logrus.Errorf("%v", err.Error)
		} else {
			logrus.Debugf("%v", err.Error)
		}
		var rl *chancache.RateLimitError
		if errors.As(err.Error, &rl) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.RetryAfter.Seconds()+0.999)))
		}
		http.Error(w, err.Message, err.Status)
	}
}

// failure maps a service error onto the status code it should produce.
func failure(err error, msg string) *serverError {
	status := http.StatusInternalServerError
	var missing *chancache.MissingPermissionsError
	switch {
	case chancache.IsStale(err), errors.Is(err, chancache.ErrUnknownChannel):
		status = http.StatusNotFound
	case chancache.IsRateLimited(err):
		status = http.StatusTooManyRequests
	case chancache.IsTransport(err):
		status = http.StatusBadGateway
	case errors.As(err, &missing):
		status = http.StatusForbidden
	}
	return &serverError{err, msg, status}
}

type server struct {
	router *mux.Router
	hub    *events.Hub

	// services
	Cache     cache.Getter
	Resolve   chancache.Resolver
	Override  chancache.Overrider
	Reconcile chancache.Reconciler
	Type      chancache.Typer
}

// NewServer receives all services needed to provide functionality
// then uses those services to build the HTTP routes. Webhook events
// published on hub are streamed to /ws subscribers.
func NewServer(c cache.Getter, resolve chancache.Resolver, override chancache.Overrider, reconcile chancache.Reconciler, typer chancache.Typer, hub *events.Hub) *server {
	s := &server{
		hub:       hub,
		Cache:     c,
		Resolve:   resolve,
		Override:  override,
		Reconcile: reconcile,
		Type:      typer,
	}

	router := mux.NewRouter().StrictSlash(true)
	apiRouter := router.PathPrefix("/api").Subrouter()

	apiRouter.Handle("/channels", s.GetChannels()).Methods("GET")
	apiRouter.Handle("/channels/{id}", s.GetChannel()).Methods("GET")

	apiRouter.Handle("/channels/{id}/permissions/users/{user}", s.UserPermissions()).Methods("GET")
	apiRouter.Handle("/channels/{id}/permissions/roles/{role}", s.RolePermissions()).Methods("GET")

	apiRouter.Handle("/channels/{id}/overrides/{kind}/{principal}", s.PutOverride()).Methods("PUT")
	apiRouter.Handle("/channels/{id}/overrides/{kind}/{principal}", s.DeleteOverride()).Methods("DELETE")

	apiRouter.Handle("/channels/{id}/webhooks", s.GetWebhooks()).Methods("GET")
	apiRouter.Handle("/channels/{id}/webhooks/refresh", s.RefreshWebhooks()).Methods("POST")

	apiRouter.Handle("/channels/{id}/typing", s.GetTyping()).Methods("GET")
	apiRouter.Handle("/channels/{id}/typing", s.StartTyping()).Methods("POST")
	apiRouter.Handle("/channels/{id}/typing", s.StopTyping()).Methods("DELETE")

	if hub != nil {
		router.HandleFunc("/ws", hub.ServeWS)
	}
	router.Handle("/metrics", promhttp.Handler())

	s.router = router
	return s
}

// Return just the mux.Router to be used in http.ListenAndServe.
func (s *server) Serve() http.Handler {
	n := negroni.Classic()
	n.UseHandler(s.router)
	return n
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Error encoding response %v", err)
	}
}

func (s *server) GetChannels() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		channels := s.Cache.GetChannels()
		if guild := r.URL.Query().Get("guild"); guild != "" {
			channels = s.Cache.GetChannelsInGuild(guild)
		}

		writeJSON(w, channels)
		return nil
	}
}

func (s *server) GetChannel() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		id := mux.Vars(r)["id"]
		ch, err := s.Cache.GetChannel(id)
		if err != nil {
			return failure(err, "Unable to find channel")
		}

		pos, err := s.Cache.Position(id)
		if err != nil {
			return failure(err, "Unable to compute channel position")
		}

		writeJSON(w, ChannelInfo{Channel: ch, Mention: ch.Mention(), DisplayIndex: pos})
		return nil
	}
}

func (s *server) UserPermissions() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		vars := mux.Vars(r)
		perms, err := s.Resolve.PermissionsForUser(r.Context(), vars["id"], vars["user"])
		if err != nil {
			return failure(err, "Unable to resolve permissions")
		}

		writeJSON(w, newPermissionSet(vars["id"], vars["user"], perms))
		return nil
	}
}

// RolePermissions resolves a role. The role's base permission bits and
// position are given as the "permissions" and "position" query params.
func (s *server) RolePermissions() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		vars := mux.Vars(r)
		q := r.URL.Query()

		role := chancache.Role{ID: vars["role"]}
		if v := q.Get("permissions"); v != "" {
			bits, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return &serverError{err, "Invalid permissions param", http.StatusBadRequest}
			}
			role.Permissions = chancache.Permissions(bits)
		}
		if v := q.Get("position"); v != "" {
			pos, err := strconv.Atoi(v)
			if err != nil {
				return &serverError{err, "Invalid position param", http.StatusBadRequest}
			}
			role.Position = pos
		}

		perms, err := s.Resolve.PermissionsForRole(vars["id"], role)
		if err != nil {
			return failure(err, "Unable to resolve permissions")
		}

		writeJSON(w, newPermissionSet(vars["id"], role.ID, perms))
		return nil
	}
}

// PutOverride replaces a principal's override. With ?sync=true the change
// is pushed to the platform first.
func (s *server) PutOverride() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		vars := mux.Vars(r)
		kind, ok := chancache.ParsePrincipalKind(vars["kind"])
		if !ok {
			return &serverError{errors.Errorf("bad kind %q", vars["kind"]), "Kind must be user or role", http.StatusBadRequest}
		}

		var payload OverrideRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		o, err := payload.toModel(kind, vars["principal"])
		if err != nil {
			return &serverError{err, err.Error(), http.StatusBadRequest}
		}

		if r.URL.Query().Get("sync") == "true" {
			err = s.Override.Sync(r.Context(), vars["id"], o)
		} else {
			err = s.Override.AddOverride(vars["id"], o)
		}
		if err != nil {
			return failure(err, "Unable to store override")
		}

		writeJSON(w, o)
		return nil
	}
}

func (s *server) DeleteOverride() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		vars := mux.Vars(r)
		kind, ok := chancache.ParsePrincipalKind(vars["kind"])
		if !ok {
			return &serverError{errors.Errorf("bad kind %q", vars["kind"]), "Kind must be user or role", http.StatusBadRequest}
		}

		var err error
		if r.URL.Query().Get("sync") == "true" {
			err = s.Override.Unsync(r.Context(), vars["id"], kind, vars["principal"])
		} else {
			err = s.Override.RemoveOverride(vars["id"], kind, vars["principal"])
		}
		if err != nil {
			return failure(err, "Unable to remove override")
		}

		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// GetWebhooks lists cached webhooks, optionally filtered by ?name=.
func (s *server) GetWebhooks() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		id := mux.Vars(r)["id"]

		var hooks []chancache.Webhook
		var err error
		if name := r.URL.Query().Get("name"); name != "" {
			hooks, err = s.Cache.GetWebhooksByName(id, name)
		} else {
			hooks, err = s.Cache.GetWebhooks(id)
		}
		if err != nil {
			return failure(err, "Unable to get webhooks")
		}
		if hooks == nil {
			hooks = []chancache.Webhook{}
		}

		writeJSON(w, hooks)
		return nil
	}
}

func (s *server) RefreshWebhooks() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		diff, err := s.Reconcile.Reconcile(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			return failure(err, "Unable to refresh webhooks")
		}

		writeJSON(w, diff)
		return nil
	}
}

func (s *server) GetTyping() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		id := mux.Vars(r)["id"]
		writeJSON(w, TypingStatus{ChannelID: id, Typing: s.Type.Typing(id)})
		return nil
	}
}

// StartTyping turns the indicator on, or flips it with ?toggle=true.
func (s *server) StartTyping() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		id := mux.Vars(r)["id"]
		if r.URL.Query().Get("toggle") == "true" {
			on, err := s.Type.Toggle(id)
			if err != nil {
				return failure(err, "Unable to toggle typing")
			}
			writeJSON(w, TypingStatus{ChannelID: id, Typing: on})
			return nil
		}

		if err := s.Type.Start(id); err != nil {
			return failure(err, "Unable to start typing")
		}

		writeJSON(w, TypingStatus{ChannelID: id, Typing: true})
		return nil
	}
}

func (s *server) StopTyping() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		id := mux.Vars(r)["id"]
		s.Type.Stop(id)

		writeJSON(w, TypingStatus{ChannelID: id, Typing: false})
		return nil
	}
}
