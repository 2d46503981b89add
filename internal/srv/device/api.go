package device

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/oledclock/apimodel"
	"github.com/jypelle/oledclock/internal/srv/config"
	"github.com/jypelle/oledclock/internal/srv/event"
	"github.com/jypelle/oledclock/internal/tool"
	"github.com/sirupsen/logrus"
)

// Snapshotter exposes the current frame buffer.
type Snapshotter interface {
	Snapshot() image.Image
}

type Api struct {
	lock         sync.RWMutex
	eventChannel chan event.ApiEvent
	source       Snapshotter

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config *config.ServerConfig
}

func NewApi(config *config.ServerConfig) *Api {
	api := Api{
		config:       config,
		eventChannel: make(chan event.ApiEvent),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						strMessage := fmt.Sprintf("%v", rec)
						GlobalErrorAction(w, strMessage, http.StatusInternalServerError)
					}
				}()

				// Check API Key
				apiKey := r.Header.Get("x-api-key")
				if apiKey != config.ServerParam.ApiParam.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	// API Routes

	// Create server check endpoint
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/display/refresh",
		func(w http.ResponseWriter, r *http.Request) {
			api.sendEvent(w, r, event.ApiEventDisplayRefreshData{})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/display/contrast/{level}",
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			levelStr, ok := vars["level"]
			if !ok {
				ErrorStatusAction(w, r, http.StatusBadRequest)
				return
			}
			level, err := strconv.ParseUint(levelStr, 10, 8)
			if err != nil {
				ErrorStatusAction(w, r, http.StatusBadRequest)
				return
			}
			api.sendEvent(w, r, event.ApiEventDisplayContrastData{Contrast: uint8(level)})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/display/snapshot",
		func(w http.ResponseWriter, r *http.Request) {
			api.lock.RLock()
			source := api.source
			api.lock.RUnlock()
			if source == nil {
				ErrorStatusAction(w, r, http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			if err := png.Encode(w, source.Snapshot()); err != nil {
				logrus.Warnf("Unable to encode snapshot: %v", err)
			}
		}).Methods("GET")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Authorization"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(config.ServerParam.ApiParam.SslPort, 10),
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 240,
		WriteTimeout: time.Second * 240,
		IdleTimeout:  time.Second * 240,
	}

	return &api
}

// Start serves the api over TLS, generating a self-signed certificate when
// missing. Snapshots are read from source.
func (d *Api) Start(source Snapshotter) {
	logrus.Infof("Start api device")

	d.lock.Lock()
	d.source = source
	d.lock.Unlock()

	existServerCert, err := tool.IsFileExists(d.selfSignedCertFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedCertFilename(), err)
	}

	existServerKey, err := tool.IsFileExists(d.selfSignedKeyFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedKeyFilename(), err)
	}

	if !existServerCert || !existServerKey {
		logrus.Info("Missing cert and key files, trying to generate them...")
		err = tool.GenerateTlsCertificate(
			tool.CertificateRequest{
				Organization: "oledclock",
				CommonName:   "Oledclock Server",
				Hostnames:    d.config.ApiParam.Hostnames,
			},
			d.selfSignedKeyFilename(),
			d.selfSignedCertFilename())
		if err != nil {
			logrus.Fatalf("Unable to generate cert and key files : %v\n", err)
		}
		logrus.Info("Self-signed cert and key files generated")
	}

	// Launch https server
	go func() {
		err := d.server.ListenAndServeTLS(d.selfSignedCertFilename(), d.selfSignedKeyFilename())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	d.server.Shutdown(context.Background())
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

// Handler is the complete api handler, without TLS.
func (d *Api) Handler() http.Handler {
	return d.server.Handler
}

func (d *Api) sendEvent(w http.ResponseWriter, r *http.Request, data interface{}) {
	result := make(chan error)
	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: data}:
	case <-r.Context().Done():
		ErrorStatusAction(w, r, http.StatusServiceUnavailable)
		return
	}
	if err := <-result; err == nil {
		ErrorStatusAction(w, r, http.StatusOK)
	} else {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
	}
}

func (d *Api) selfSignedKeyFilename() string {
	return filepath.Join(d.config.ConfigDir, "key.pem")
}

func (d *Api) selfSignedCertFilename() string {
	return filepath.Join(d.config.ConfigDir, "cert.pem")
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, title string, status int) {
	apimodel.ErrorMessage{ErrStatusCode: status, ErrMessage: title}.SendError(w)
}
