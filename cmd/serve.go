package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/db"
	"github.com/jsphweid/jianpu/document"
	"github.com/jsphweid/jianpu/file"
	"github.com/jsphweid/jianpu/importer"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/notation"
	"github.com/jsphweid/jianpu/scale"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// maxUploadBytes bounds request bodies, score uploads included.
const maxUploadBytes = 8 << 20

var (
	port  string
	store db.Store
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", constants.GetPort(), "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the HTTP API",
	Long:  `Serves parsing, layout, import and document storage over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openStore(); err != nil {
			return err
		}
		logrus.WithField("port", port).Info("serving")
		return http.ListenAndServe(":"+port, NewHandler())
	},
}

func openStore() (db.Store, error) {
	if store != nil {
		return store, nil
	}
	s, err := db.NewDefaultStore()
	if err != nil {
		return nil, err
	}
	store = s
	return store, nil
}

// SetStore replaces the document store used by the handlers.
func SetStore(s db.Store) {
	store = s
}

func NewHandler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(requestID)
	router.HandleFunc("/keys", HandleKeys).Methods("GET")
	router.HandleFunc("/parse", HandleParse).Methods("POST")
	router.HandleFunc("/layout", HandleLayout).Methods("POST")
	router.HandleFunc("/import", HandleImport).Methods("POST")
	router.HandleFunc("/documents", HandleSaveDocument).Methods("PUT")
	router.HandleFunc("/documents/{owner}", HandleListDocuments).Methods("GET")
	router.HandleFunc("/documents/{owner}/{title}", HandleLoadDocument).Methods("GET")
	router.HandleFunc("/documents/{owner}/{title}", HandleDeleteDocument).Methods("DELETE")

	return cors.New(cors.Options{
		AllowedOrigins: constants.GetAllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}).Handler(router)
}

type ctxKey struct{}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)
		logrus.WithFields(logrus.Fields{"id": id, "method": r.Method, "path": r.URL.Path}).Debug("request")
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func logger(r *http.Request) *logrus.Entry {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return logrus.WithField("id", id)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("could not encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger(r).WithError(err).Error("request failed")
	} else {
		logger(r).WithError(err).Debug("bad request")
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func readBody(r *http.Request, v interface{}) error {
	reqBody, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		return errors.Wrap(err, "could not read request body")
	}
	return errors.Wrap(json.Unmarshal(reqBody, v), "could not unmarshal request body")
}

func HandleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scale.All())
}

func HandleParse(w http.ResponseWriter, r *http.Request) {
	var input model.ParseRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	key, err := scale.KeyAt(input.KeyIndex)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	tokens, total := notation.Parse(input.Text, key)
	if tokens == nil {
		tokens = make([]model.Token, 0)
	}
	writeJSON(w, http.StatusOK, model.ParseResponse{Tokens: tokens, TotalDuration: total})
}

func HandleLayout(w http.ResponseWriter, r *http.Request) {
	var input model.LayoutRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	key, err := scale.KeyAt(input.KeyIndex)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	res := model.LayoutResponse{Drawings: make([]model.Drawing, 0, len(input.Blocks))}
	for _, b := range input.Blocks {
		res.Drawings = append(res.Drawings, renderBlock(document.ParseBlock(b, key), input.Settings))
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleImport takes the raw score file as the body.
func HandleImport(w http.ResponseWriter, r *http.Request) {
	format, err := file.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	var forced *int
	if k := r.URL.Query().Get("key"); k != "" {
		i, err := strconv.Atoi(k)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, errors.Wrapf(err, "bad key %q", k))
			return
		}
		forced = &i
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, errors.Wrap(err, "could not read request body"))
		return
	}
	score, err := file.DecodeScore(bytes.NewReader(data), format)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	res, err := importer.Import(score, forced)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ImportResponse{Text: res.Text, DetectedKeyIndex: res.DetectedKeyIndex})
}

func HandleSaveDocument(w http.ResponseWriter, r *http.Request) {
	var input model.DocumentRecord
	if err := readBody(r, &input); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if input.Owner == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("an owner is required"))
		return
	}
	rec, err := document.FromRecord(input).Record(input.Owner)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := store.Save(r.Context(), rec); err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	list, err := store.List(r.Context(), mux.Vars(r)["owner"])
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	if list == nil {
		list = make([]model.DocumentSummary, 0)
	}
	writeJSON(w, http.StatusOK, list)
}

func storeStatus(err error) int {
	if errors.Is(err, db.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func HandleLoadDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := store.Load(r.Context(), vars["owner"], vars["title"], r.URL.Query().Get("album"))
	if err != nil {
		writeError(w, r, storeStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := store.Delete(r.Context(), vars["owner"], vars["title"], r.URL.Query().Get("album")); err != nil {
		writeError(w, r, storeStatus(err), err)
		return
	}
	logger(r).WithField("title", vars["title"]).Infof("deleted document of %s", vars["owner"])
	w.WriteHeader(http.StatusNoContent)
}
