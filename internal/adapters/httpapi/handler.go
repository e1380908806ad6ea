// Package httpapi exposes builds over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

// Response headers carrying the build manifest.
const (
	HeaderRequestID   = "X-Packsmith-Request-Id"
	HeaderFingerprint = "X-Packsmith-Fingerprint"
	HeaderPlatform    = "X-Packsmith-Platform"
	HeaderCache       = "X-Packsmith-Cache"
	HeaderIncluded    = "X-Packsmith-Included"
	HeaderMissing     = "X-Packsmith-Missing"
	HeaderConflicts   = "X-Packsmith-Conflicts"
	HeaderFailed      = "X-Packsmith-Failed"
)

// exposedHeaders lets browser clients read the file name and the manifest.
var exposedHeaders = strings.Join([]string{
	"Content-Disposition",
	HeaderRequestID,
	HeaderFingerprint,
	HeaderPlatform,
	HeaderCache,
	HeaderIncluded,
	HeaderMissing,
	HeaderConflicts,
	HeaderFailed,
}, ", ")

const zipContentType = "application/zip"

// Handler routes API requests to a build service.
type Handler struct {
	builds ports.BuildService
	logger ports.Logger
	mux    *http.ServeMux
}

// NewHandler creates a new Handler.
func NewHandler(builds ports.BuildService, logger ports.Logger) *Handler {
	h := &Handler{builds: builds, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /download", h.download)
	h.mux.HandleFunc("GET /bundles/{id}/download", h.downloadBundle)
	h.mux.HandleFunc("GET /supported-versions", h.supportedVersions)
	h.mux.HandleFunc("GET /healthz", h.health)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// download builds an archive from ?pack=id[@range] (repeatable), ?version= and ?mode=.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	mode, err := domain.ParseMode(query.Get("mode"))
	if err != nil {
		h.fail(w, err)
		return
	}

	req := domain.BuildRequest{
		Packages:        packsFromQuery(query["pack"], query["pack[]"]),
		PlatformVersion: strings.TrimSpace(query.Get("version")),
		Mode:            mode,
	}

	out, err := h.builds.Build(r.Context(), req, tokenFrom(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeArchive(w, out, out.Filename)
}

// downloadBundle builds a bundle version selected by ?version= (exact or range).
func (h *Handler) downloadBundle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	id := r.PathValue("id")

	mode, err := domain.ParseMode(query.Get("mode"))
	if err != nil {
		h.fail(w, err)
		return
	}

	out, err := h.builds.BuildBundle(r.Context(), id, strings.TrimSpace(query.Get("version")), mode, tokenFrom(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeArchive(w, out, fmt.Sprintf("%s-%s.zip", id, mode))
}

func (h *Handler) supportedVersions(w http.ResponseWriter, _ *http.Request) {
	platforms := h.builds.SupportedPlatforms()
	if platforms == nil {
		platforms = []string{}
	}
	writeJSON(w, http.StatusOK, platforms)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *Handler) writeArchive(w http.ResponseWriter, out *domain.BuildOutput, filename string) {
	header := w.Header()
	writeManifest(header, out.Manifest)
	header.Set("Content-Type", zipContentType)
	header.Set("Content-Length", strconv.Itoa(len(out.Data)))
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	header.Set("Access-Control-Expose-Headers", exposedHeaders)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Data); err != nil {
		h.logger.Warn(fmt.Sprintf("failed to send archive %s: %v", out.Manifest.RequestID, err))
	}
}

// fail maps err to a status code and writes it as a JSON error body.
// Server side failures are logged; the caller only sees the top-level message.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(err)
	}
	writeJSON(w, status, errorBody{Error: publicMessage(err, status), Status: status})
}

// StatusFor returns the HTTP status code for a build error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoPacksFound),
		errors.Is(err, domain.ErrBundleNotFound),
		errors.Is(err, domain.ErrBundleVersionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"statusCode"`
}

// publicMessage returns the message of the innermost error for client errors.
// Server errors never expose their cause.
func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return domain.ErrBuildFailed.Error()
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	var zErr *zerr.Error
	if errors.As(err, &zErr) {
		return zErr.Message()
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeManifest(header http.Header, m domain.BuildManifest) {
	header.Set(HeaderRequestID, m.RequestID.String())
	header.Set(HeaderFingerprint, m.Fingerprint)
	header.Set(HeaderPlatform, m.Platform)
	if m.CacheHit {
		header.Set(HeaderCache, "hit")
	} else {
		header.Set(HeaderCache, "miss")
	}

	included := make([]string, 0, len(m.Included))
	for _, p := range m.Included {
		included = append(included, p.PackageID+"@"+p.Version)
	}
	setList(header, HeaderIncluded, included)

	missing := make([]string, 0, len(m.Missing))
	for _, ref := range m.Missing {
		missing = append(missing, ref.String())
	}
	setList(header, HeaderMissing, missing)

	conflicts := make([]string, 0, len(m.Conflicts))
	for _, c := range m.Conflicts {
		rejected := c.Rejected
		if rejected == "" {
			rejected = c.Range
		}
		conflicts = append(conflicts, fmt.Sprintf("%s@%s!%s", c.PackageID, c.Selected, rejected))
	}
	setList(header, HeaderConflicts, conflicts)

	setList(header, HeaderFailed, m.Failed)
}

func setList(header http.Header, key string, values []string) {
	if len(values) == 0 {
		return
	}
	header.Set(key, strings.Join(values, ","))
}

// packsFromQuery merges the pack parameters, splitting comma separated values.
func packsFromQuery(lists ...[]string) []string {
	var packs []string
	for _, list := range lists {
		for _, v := range list {
			for p := range strings.SplitSeq(v, ",") {
				if p = strings.TrimSpace(p); p != "" {
					packs = append(packs, p)
				}
			}
		}
	}
	return packs
}

// tokenFrom reads the caller token from a bearer Authorization header, falling back to ?token=.
func tokenFrom(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}
