package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/meatupclub/meatup/internal/application"
)

// RouterConfig lists the handlers mounted by NewRouter. Nil handlers leave
// their routes unregistered.
type RouterConfig struct {
	Sessions    SessionValidator
	Auth        *AuthHandler
	Members     *MemberHandler
	Events      *EventHandler
	Suggestions *SuggestionHandler
	Polls       *PollHandler
	RSVPs       *RSVPHandler
	Health      *HealthHandler
	Logger      *slog.Logger
	Middleware  []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authenticated := func(h http.HandlerFunc) http.Handler {
		if cfg.Sessions == nil {
			return h
		}
		return RequireSession(cfg.Sessions, cfg.Logger)(h)
	}

	if cfg.Health != nil {
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health.Check(w, r)
		})
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.Handle("/sessions/current", authenticated(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		}))
		mux.Handle("/me", authenticated(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Auth.Me(w, r)
		}))
		mux.Handle("/accept-invite", authenticated(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.AcceptInvite(w, r)
		}))
	}

	if cfg.Events != nil {
		mux.Handle("/events", authenticated(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Events.List(w, r)
			case http.MethodPost:
				cfg.Events.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/events/", authenticated(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/events/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Events.Get(w, r, id)
			case http.MethodPut, http.MethodPatch:
				cfg.Events.Update(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch)
			}
		}))
	}

	if cfg.Suggestions != nil {
		mux.Handle("/restaurants", authenticated(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Suggestions.ListRestaurants(w, r)
			case http.MethodPost:
				cfg.Suggestions.SuggestRestaurant(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/dates", authenticated(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Suggestions.ListDates(w, r)
			case http.MethodPost:
				cfg.Suggestions.SuggestDate(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		for prefix, kind := range map[string]application.SuggestionKind{
			"/restaurants": application.KindRestaurant,
			"/dates":       application.KindDate,
		} {
			vote := cfg.Suggestions.Vote(kind)
			unvote := cfg.Suggestions.Unvote(kind)
			mux.Handle(prefix+"/vote", authenticated(func(w http.ResponseWriter, r *http.Request) {
				switch r.Method {
				case http.MethodPost:
					vote(w, r)
				case http.MethodDelete:
					unvote(w, r)
				default:
					methodNotAllowed(w, http.MethodPost, http.MethodDelete)
				}
			}))
		}
	}

	if cfg.Polls != nil {
		mux.Handle("/polls", authenticated(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Polls.Open(w, r)
		}))
		mux.Handle("/polls/current", authenticated(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Polls.Current(w, r)
		}))
		mux.Handle("/polls/close", authenticated(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Polls.Close(w, r)
		}))
	}

	if cfg.RSVPs != nil {
		mux.Handle("/rsvp", authenticated(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.RSVPs.Get(w, r)
			case http.MethodPost:
				cfg.RSVPs.Set(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
	}

	if cfg.Members != nil {
		mux.Handle("/members", authenticated(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Members.List(w, r)
			case http.MethodPost:
				cfg.Members.Create(w, r)
			case http.MethodPut:
				cfg.Members.Update(w, r)
			case http.MethodDelete:
				cfg.Members.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = w.Write([]byte(`{"error":"method not allowed"}` + "\n"))
}
