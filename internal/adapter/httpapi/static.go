package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
)

const homePage = "home.html"

type StaticHandler struct {
	dir string
}

func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

// Home serves home.html verbatim; it is read on every request so edits
// show up without a restart.
func (s *StaticHandler) Home(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(s.dir, homePage))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Assets serves files under dir. Directories answer 404 instead of a listing.
func (s *StaticHandler) Assets() http.Handler {
	return http.FileServer(filesOnly{http.Dir(s.dir)})
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
