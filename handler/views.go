package handler

import (
	"html/template"
	"time"

	"yatube/domain"
	"yatube/media"
	"yatube/paginator"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var sanitizerUGC = bluemonday.UGCPolicy()

const dateFormat = "02 Jan 2006"

// Base is embedded in every page.
type Base struct {
	Site domain.Site
	User *domain.User
	CSRF string
}

func (b Base) LoggedIn() bool {
	return b.User != nil
}

type PostDTO struct {
	ID       string
	Excerpt  string
	Content  template.HTML
	Author   domain.User
	Group    *domain.Group
	ImageURL string
	PubDate  string
	CanEdit  bool
}

type CommentDTO struct {
	Author  domain.User
	Text    string
	Created string
}

type ListPage struct {
	Base
	Page  paginator.Page
	Posts []PostDTO
}

type GroupPage struct {
	ListPage
	Group domain.Group
}

type ProfilePage struct {
	ListPage
	Author    domain.User
	PostCount int
	Following bool
	CanFollow bool
}

type PostDetailPage struct {
	Base
	Post            PostDTO
	AuthorPostCount int
	Comments        []CommentDTO
}

type PostFormPage struct {
	Base
	IsEdit   bool
	PostID   string
	Form     PostForm
	Groups   []domain.Group
	ImageURL string
	Errors   FormErrors
}

type LoginPage struct {
	Base
	Username string
	Next     string
	Error    string
}

type SignupPage struct {
	Base
	Form   SignupForm
	Errors FormErrors
}

type ErrorPage struct {
	Base
	Code    int
	Message string
}

func toPostDTO(p domain.Post, viewer *domain.User) PostDTO {
	dto := PostDTO{
		ID:       p.ID,
		Excerpt:  p.String(),
		Content:  safeMd(p.Text),
		Author:   p.Author,
		Group:    p.Group,
		ImageURL: media.URL(p.Image),
		PubDate:  formatDate(p.PubDate),
	}
	if viewer != nil {
		dto.CanEdit = p.IsAuthor(viewer.ID)
	}
	return dto
}

func toCommentDTO(c domain.Comment) CommentDTO {
	return CommentDTO{
		Author:  c.Author,
		Text:    c.Text,
		Created: formatDate(c.Created),
	}
}

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

func mdToHTML(md string) []byte {
	// create markdown parser with extensions
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	// create HTML renderer with extensions
	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return markdown.Render(doc, renderer)
}

func safeMd(content string) template.HTML {
	return template.HTML(sanitizerUGC.SanitizeBytes(mdToHTML(content)))
}
