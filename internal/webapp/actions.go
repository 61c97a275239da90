package webapp

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	confirmField = "confirmado"
	confirmYes   = "si"
	confirmNo    = "no"
)

// pathID reads the numeric {id} path segment, or 0.
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func queryID(r *http.Request, key string) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func postForm(r *http.Request) url.Values {
	_ = r.ParseForm()
	return r.PostForm
}

// deletion describes one destructive row action.
type deletion struct {
	question string
	back     string
	done     string
	failed   string
	run      func() error
}

// confirmDelete renders the confirmation page until the form comes back
// with confirmado=si. Nothing is sent to the backend before that.
func (s *server) confirmDelete(w http.ResponseWriter, r *http.Request, d deletion) {
	switch r.PostFormValue(confirmField) {
	case confirmYes:
		if err := d.run(); err != nil {
			s.log.Warn().Err(err).Str("path", r.URL.Path).Msg("delete failed")
			redirect(w, r, d.back, "error", backendMessage(err, d.failed))
			return
		}
		s.views.drop(r)
		redirect(w, r, d.back, "message", d.done)
	case confirmNo:
		http.Redirect(w, r, d.back, http.StatusFound)
	default:
		s.render(w, r, s.confirmTmpl, http.StatusOK, pageData{
			Title:   "Confirmar",
			Confirm: &confirmView{Question: d.question, Action: r.URL.Path, Back: d.back, Carry: carried(r)},
		})
	}
}

// carried keeps the posted fields, other than the token and the answer, so
// the confirmed request looks like the original one.
func carried(r *http.Request) map[string]string {
	out := map[string]string{}
	for key, values := range r.PostForm {
		if key == csrfField || key == confirmField || len(values) == 0 {
			continue
		}
		out[key] = values[0]
	}
	return out
}
