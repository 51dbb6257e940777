package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"blog/internal/auth"
	"blog/internal/db"
	"blog/internal/forms"
	"blog/internal/models"
)

const msgDuplicateTitle = "A post with that title already exists."

var errTitleTaken = errors.New("title taken")

// ShowPost renders a post with its comments and accepts new comments.
func (h *Handler) ShowPost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	postID, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	ctx := r.Context()
	post, err := h.store.PostByID(ctx, postID)
	if errors.Is(err, db.ErrNotFound) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, r, err)
		return
	}

	p := &page{Title: post.Title, Post: post}
	if r.Method == http.MethodPost {
		if !id.Authenticated {
			h.sessions.Flash(w, r, msgLoginComment)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		form := forms.ParseCommentForm(r)
		if errs := form.Validate(); !errs.Valid() {
			p.Errors = errs
			p.CommentText = form.Text
		} else {
			c := models.Comment{Text: form.Text, AuthorID: id.UserID, PostID: post.ID}
			if err := h.store.CreateComment(ctx, &c); err != nil {
				h.serverError(w, r, err)
				return
			}
			h.metrics.Comments.Inc()
		}
	}

	if err := h.loadPostPage(r, p); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, id, http.StatusOK, "post", p)
}

func (h *Handler) loadPostPage(r *http.Request, p *page) error {
	comments, err := h.store.CommentsForPost(r.Context(), p.Post.ID)
	if err != nil {
		return err
	}
	ids := []int64{p.Post.AuthorID}
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	users, err := h.authorNames(r, ids...)
	if err != nil {
		return err
	}

	p.Author = users[p.Post.AuthorID].Name
	// Post bodies are rich text written by the admin.
	p.Body = template.HTML(p.Post.Body)
	p.Comments = make([]commentView, 0, len(comments))
	for _, c := range comments {
		u := users[c.AuthorID]
		p.Comments = append(p.Comments, commentView{Text: c.Text, Author: u.Name, AuthorEmail: u.Email})
	}
	return nil
}

func (h *Handler) NewPost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.Method == http.MethodGet {
		h.render(w, r, id, http.StatusOK, "make-post", &page{Title: "New Post"})
		return
	}

	form := forms.ParsePostForm(r)
	if errs := form.Validate(); !errs.Valid() {
		h.render(w, r, id, http.StatusOK, "make-post", &page{Title: "New Post", PostForm: form, Errors: errs})
		return
	}

	ctx := r.Context()
	post := models.Post{
		AuthorID: id.UserID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
		Date:     h.now().Format(DateLayout),
	}
	err := h.store.Tx(ctx, func(tx *db.Store) error {
		if _, err := tx.PostByTitle(ctx, post.Title); err == nil {
			return errTitleTaken
		} else if !errors.Is(err, db.ErrNotFound) {
			return err
		}
		return tx.CreatePost(ctx, &post)
	})
	if errors.Is(err, errTitleTaken) || errors.Is(err, db.ErrDuplicate) {
		h.render(w, r, id, http.StatusOK, "make-post", &page{Title: "New Post", PostForm: form, FormError: msgDuplicateTitle})
		return
	} else if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.PostChanged("create")
	h.logger.Info("post created", "post_id", post.ID, "author_id", post.AuthorID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) EditPost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	postID, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	ctx := r.Context()
	post, err := h.store.PostByID(ctx, postID)
	if errors.Is(err, db.ErrNotFound) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, r, err)
		return
	}

	if r.Method == http.MethodGet {
		form := forms.PostForm{Title: post.Title, Subtitle: post.Subtitle, ImgURL: post.ImgURL, Body: post.Body}
		h.render(w, r, id, http.StatusOK, "make-post", &page{Title: "Edit Post", PostForm: form, IsEdit: true})
		return
	}

	form := forms.ParsePostForm(r)
	if errs := form.Validate(); !errs.Valid() {
		h.render(w, r, id, http.StatusOK, "make-post", &page{Title: "Edit Post", PostForm: form, Errors: errs, IsEdit: true})
		return
	}

	post.Title = form.Title
	post.Subtitle = form.Subtitle
	post.ImgURL = form.ImgURL
	post.Body = form.Body
	post.AuthorID = id.UserID
	err = h.store.Tx(ctx, func(tx *db.Store) error {
		other, err := tx.PostByTitle(ctx, post.Title)
		if err == nil && other.ID != post.ID {
			return errTitleTaken
		} else if err != nil && !errors.Is(err, db.ErrNotFound) {
			return err
		}
		return tx.UpdatePost(ctx, post)
	})
	switch {
	case errors.Is(err, errTitleTaken), errors.Is(err, db.ErrDuplicate):
		h.render(w, r, id, http.StatusOK, "make-post", &page{Title: "Edit Post", PostForm: form, FormError: msgDuplicateTitle, IsEdit: true})
		return
	case errors.Is(err, db.ErrNotFound):
		h.NotFound(w, r)
		return
	case err != nil:
		h.serverError(w, r, err)
		return
	}

	h.metrics.PostChanged("update")
	http.Redirect(w, r, "/post/"+strconv.FormatInt(post.ID, 10), http.StatusFound)
}

// DeletePost removes a post together with its comments.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	postID, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	err := h.store.DeletePost(r.Context(), postID)
	if errors.Is(err, db.ErrNotFound) {
		h.NotFound(w, r)
		return
	} else if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.PostChanged("delete")
	h.logger.Info("post deleted", "post_id", postID, "user_id", id.UserID)
	http.Redirect(w, r, "/", http.StatusFound)
}
