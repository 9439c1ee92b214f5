package web

import (
	"net/http"
	"strconv"
	"strings"

	"catering-menu/models"
	"catering-menu/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const sessionCookie = "catering_session"

type categoryView struct {
	Name   string
	Dishes []models.Dish
}

type pageData struct {
	Categories []categoryView
	View       services.OrderView
	Notice     services.Notice
	MaxQty     int
}

// sessionID returns the caller's session id, issuing a new cookie when it is missing or malformed.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (svr *Server) index(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	data := pageData{MaxQty: svr.maxQty}
	for _, c := range svr.catalog.Categories() {
		data.Categories = append(data.Categories, categoryView{Name: c, Dishes: svr.catalog.ByCategory(c)})
	}
	svr.sessions.Do(id, func(s *services.Session) {
		data.Notice = s.TakeNotice()
		data.View = services.Render(s, svr.link, svr.currency)
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := svr.tmpl.ExecuteTemplate(w, "page", data); err != nil {
		log.WithError(err).Error("render page")
	}
}

func (svr *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	dishID, err := strconv.ParseInt(r.FormValue("dish_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid dish_id", http.StatusBadRequest)
		return
	}
	d, ok := svr.catalog.Dish(dishID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	// a missing or malformed quantity is treated like zero
	qty, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("qty")))

	id := sessionID(w, r)
	svr.sessions.Do(id, func(s *services.Session) {
		s.AddDish(d, qty)
	})
	http.Redirect(w, r, "/#menu", http.StatusSeeOther)
}

func (svr *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	// malformed values turn into a removal that matches no line
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		index = -1
	}
	dishID, err := strconv.ParseInt(r.FormValue("dish_id"), 10, 64)
	if err != nil {
		index = -1
	}
	id := sessionID(w, r)
	svr.sessions.Do(id, func(s *services.Session) {
		s.RemoveLine(index, dishID)
	})
	http.Redirect(w, r, "/#cart", http.StatusSeeOther)
}

func (svr *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	svr.sessions.Do(id, func(s *services.Session) {
		s.ClearCart()
	})
	http.Redirect(w, r, "/#cart", http.StatusSeeOther)
}

func (svr *Server) submitCustomer(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	svr.sessions.Do(id, func(s *services.Session) {
		s.SubmitCustomer(r.FormValue("name"), r.FormValue("phone"), r.FormValue("address"))
	})
	http.Redirect(w, r, "/#order", http.StatusSeeOther)
}

// order sends the browser to the deep link, or back to the page when it is not available yet.
func (svr *Server) order(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	var v services.OrderView
	svr.sessions.Do(id, func(s *services.Session) {
		v = services.Render(s, svr.link, svr.currency)
	})
	if !v.LinkEnabled {
		http.Redirect(w, r, "/#order", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, v.Link, http.StatusSeeOther)
}

func (svr *Server) image(w http.ResponseWriter, r *http.Request) {
	dishID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	d, ok := svr.catalog.Dish(dishID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ref := svr.images.Resolve(d.Image)
	if ref.IsLocal() {
		http.ServeFile(w, r, ref.Path)
		return
	}
	http.Redirect(w, r, ref.URL, http.StatusFound)
}
