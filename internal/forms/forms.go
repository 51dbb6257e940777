// Package forms parses and validates the blog's HTML form submissions.
package forms

import (
	"net/http"
	"net/url"
	"strings"
)

// Errors maps a form field name to its validation message.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

func (e Errors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e[field] = "This field is required."
	}
}

// PostForm backs both post creation and post editing.
type PostForm struct {
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

func ParsePostForm(r *http.Request) PostForm {
	return PostForm{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Subtitle: strings.TrimSpace(r.FormValue("subtitle")),
		ImgURL:   strings.TrimSpace(r.FormValue("img_url")),
		Body:     strings.TrimSpace(r.FormValue("body")),
	}
}

func (f PostForm) Validate() Errors {
	errs := Errors{}
	errs.required("title", f.Title)
	errs.required("subtitle", f.Subtitle)
	errs.required("img_url", f.ImgURL)
	errs.required("body", f.Body)
	if _, ok := errs["img_url"]; !ok && !ValidURL(f.ImgURL) {
		errs["img_url"] = "Invalid URL."
	}
	return errs
}

// ValidURL accepts absolute http and https URLs with a host.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	return host != "" && !strings.ContainsAny(host, " \t")
}

type RegisterForm struct {
	Email    string
	Password string
	Name     string
}

func ParseRegisterForm(r *http.Request) RegisterForm {
	return RegisterForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Name:     strings.TrimSpace(r.FormValue("name")),
	}
}

func (f RegisterForm) Validate() Errors {
	errs := Errors{}
	errs.required("email", f.Email)
	errs.required("password", f.Password)
	errs.required("name", f.Name)
	return errs
}

type LoginForm struct {
	Email    string
	Password string
}

func ParseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
}

func (f LoginForm) Validate() Errors {
	errs := Errors{}
	errs.required("email", f.Email)
	errs.required("password", f.Password)
	return errs
}

type CommentForm struct {
	Text string
}

func ParseCommentForm(r *http.Request) CommentForm {
	return CommentForm{Text: strings.TrimSpace(r.FormValue("comment_text"))}
}

func (f CommentForm) Validate() Errors {
	errs := Errors{}
	errs.required("comment_text", f.Text)
	return errs
}
