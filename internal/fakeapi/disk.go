package fakeapi

import (
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// DiskFile is a file stored by the fake disk.
type DiskFile struct {
	Name      string
	SourceURL string
}

// Disk is a fake of the Yandex Disk resources API. Folders live at the disk
// root; uploads are applied immediately instead of asynchronously.
type Disk struct {
	Token string

	mu      sync.Mutex
	folders map[string]map[string]DiskFile
	ops     int
}

// NewDisk creates an empty Disk that accepts "OAuth <token>".
func NewDisk(token string) *Disk {
	return &Disk{
		Token:   token,
		folders: make(map[string]map[string]DiskFile),
	}
}

// Handler returns the routed API.
func (d *Disk) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(d.authorize)
	r.HandleFunc("/v1/disk/resources/upload", d.upload).Methods(http.MethodPost)
	r.HandleFunc("/v1/disk/resources", d.createFolder).Methods(http.MethodPut)
	r.HandleFunc("/v1/disk/resources", d.getResource).Methods(http.MethodGet)
	return r
}

// Files returns the files stored in folder, sorted by name.
func (d *Disk) Files(folder string) []DiskFile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sortedFiles(cleanPath(folder))
}

// AddFolder creates folder directly, bypassing the API.
func (d *Disk) AddFolder(folder string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.folders[cleanPath(folder)] = make(map[string]DiskFile)
}

func (d *Disk) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "OAuth "+d.Token {
			diskError(w, http.StatusUnauthorized, "UnauthorizedError", "Не авторизован.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (d *Disk) createFolder(w http.ResponseWriter, r *http.Request) {
	folder := cleanPath(r.URL.Query().Get("path"))
	if folder == "" {
		diskError(w, http.StatusBadRequest, "FieldValidationError", "path is required")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.folders[folder]; ok {
		diskError(w, http.StatusConflict, "DiskPathPointsToExistentDirectoryError",
			fmt.Sprintf("По указанному пути %q уже существует папка с таким именем.", "disk:/"+folder))
		return
	}
	d.folders[folder] = make(map[string]DiskFile)

	writeJSON(w, http.StatusCreated, map[string]any{
		"href":      "https://cloud-api.yandex.net/v1/disk/resources?path=disk%3A%2F" + folder,
		"method":    http.MethodGet,
		"templated": false,
	})
}

func (d *Disk) upload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := cleanPath(q.Get("path"))
	source := q.Get("url")
	if target == "" || source == "" {
		diskError(w, http.StatusBadRequest, "FieldValidationError", "path and url are required")
		return
	}

	folder, name := path.Split(target)
	folder = strings.TrimSuffix(folder, "/")

	d.mu.Lock()
	defer d.mu.Unlock()

	files, ok := d.folders[folder]
	if !ok {
		diskError(w, http.StatusConflict, "DiskPathDoesntExistsError",
			fmt.Sprintf("Указанного пути %q не существует.", "disk:/"+folder))
		return
	}
	if _, exists := files[name]; exists && q.Get("overwrite") != "true" {
		diskError(w, http.StatusConflict, "DiskResourceAlreadyExistsError",
			fmt.Sprintf("Ресурс %q уже существует.", "disk:/"+target))
		return
	}
	files[name] = DiskFile{Name: name, SourceURL: source}

	d.ops++
	writeJSON(w, http.StatusAccepted, map[string]any{
		"href":      fmt.Sprintf("https://cloud-api.yandex.net/v1/disk/operations/op-%d", d.ops),
		"method":    http.MethodGet,
		"templated": false,
	})
}

func (d *Disk) getResource(w http.ResponseWriter, r *http.Request) {
	folder := cleanPath(r.URL.Query().Get("path"))

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.folders[folder]; !ok {
		diskError(w, http.StatusNotFound, "DiskNotFoundError", "Не удалось найти запрошенный ресурс.")
		return
	}

	files := d.sortedFiles(folder)
	items := make([]map[string]any, 0, len(files))
	for _, f := range files {
		items = append(items, map[string]any{
			"type":       "file",
			"name":       f.Name,
			"path":       "disk:/" + folder + "/" + f.Name,
			"media_type": "image",
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"type": "dir",
		"name": path.Base(folder),
		"path": "disk:/" + folder,
		"_embedded": map[string]any{
			"path":  "disk:/" + folder,
			"total": len(items),
			"items": items,
		},
	})
}

func (d *Disk) sortedFiles(folder string) []DiskFile {
	files := make([]DiskFile, 0, len(d.folders[folder]))
	for _, f := range d.folders[folder] {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}

func cleanPath(p string) string {
	p = strings.TrimPrefix(p, "disk:")
	return strings.Trim(p, "/")
}

func diskError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]any{
		"error":       code,
		"description": description,
		"message":     description,
	})
}
