package web

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"catering-menu/config"
	"catering-menu/services"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	readTimeout       = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second
)

type Server struct {
	Router *mux.Router
	server *http.Server

	catalog  *services.Catalog
	sessions *services.SessionStore
	images   services.ImageResolver
	link     services.OrderLink
	currency string
	maxQty   int
	tmpl     *template.Template
}

func NewServer(cfg *config.Config, catalog *services.Catalog, sessions *services.SessionStore) (*Server, error) {
	svr := &Server{
		Router:   mux.NewRouter(),
		catalog:  catalog,
		sessions: sessions,
		images:   services.ImageResolver{Dir: cfg.Catalog.ImagesDir, Placeholder: cfg.Catalog.Placeholder},
		link:     services.OrderLink{ServiceURL: cfg.Order.ServiceURL, Recipient: cfg.Order.Recipient},
		currency: cfg.Order.Currency,
		maxQty:   cfg.Order.MaxQtyPerAdd,
	}
	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"amount": func(d decimal.Decimal) string { return services.FormatAmount(svr.currency, d) },
		"inc":    func(i int) int { return i + 1 },
		"join":   strings.Join,
		"noticeClass": func(n services.Notice) string {
			switch n.Level {
			case services.NoticeSuccess:
				return "success"
			case services.NoticeWarning:
				return "warning"
			case services.NoticeError:
				return "error"
			}
			return "info"
		},
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	svr.tmpl = tmpl
	svr.setupRoutes()
	svr.server = &http.Server{
		Addr:              cfg.Web.Addr,
		Handler:           svr.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr, nil
}

func (svr *Server) setupRoutes() {
	r := svr.Router
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods(http.MethodGet)

	r.HandleFunc("/", svr.index).Methods(http.MethodGet)
	r.HandleFunc("/cart/add", svr.addToCart).Methods(http.MethodPost)
	r.HandleFunc("/cart/remove", svr.removeFromCart).Methods(http.MethodPost)
	r.HandleFunc("/cart/clear", svr.clearCart).Methods(http.MethodPost)
	r.HandleFunc("/customer", svr.submitCustomer).Methods(http.MethodPost)
	r.HandleFunc("/order", svr.order).Methods(http.MethodGet)
	r.HandleFunc("/images/{id:[0-9]+}", svr.image).Methods(http.MethodGet)
}

// Handler is the router wrapped with request logging.
func (svr *Server) Handler() http.Handler {
	return logMiddleware(svr.Router)
}

// Run serves until Shutdown is called.
func (svr *Server) Run() error {
	log.WithField("addr", svr.server.Addr).Info("web server listening")
	if err := svr.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
