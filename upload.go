package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// SlideMetadata is the catalogue entry a deck is published under.
type SlideMetadata struct {
	Title       string  `json:"title" validate:"required"`
	Topic       string  `json:"topic" validate:"required"`
	Price       float64 `json:"price" validate:"min=0"`
	Grade       int     `json:"grade" validate:"min=1,max=12"`
	IsPublished bool    `json:"isPublished"`
}

// ValidationError is returned before any network traffic when the metadata
// or the exported file is unusable. Fields maps json field names to
// messages.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, v.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// Trimmed returns m with surrounding whitespace removed from its text
// fields.
func (m SlideMetadata) Trimmed() SlideMetadata {
	m.Title = strings.TrimSpace(m.Title)
	m.Topic = strings.TrimSpace(m.Topic)
	return m
}

// Validate checks the trimmed metadata, so a blank title is still missing.
func (m SlideMetadata) Validate() error {
	err := validate.Struct(m.Trimmed())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate metadata")
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fe.Translate(translator)
	}
	return out
}

type slidePage struct {
	OrderNumber int    `json:"orderNumber"`
	Title       string `json:"title"`
	Content     string `json:"content"`
}

type slideDescriptor struct {
	SlideMetadata
	SlidePages []slidePage `json:"slidePages"`
}

type pageContent struct {
	Elements        []Element `json:"elements"`
	BackgroundColor string    `json:"backgroundColor"`
}

// buildDescriptor serializes every slide as its own page. Page content is
// a JSON string, not a nested object, which is what the catalogue stores.
func buildDescriptor(meta SlideMetadata, doc Document) (slideDescriptor, error) {
	d := slideDescriptor{SlideMetadata: meta, SlidePages: make([]slidePage, 0, len(doc.Slides))}
	for i, s := range doc.Slides {
		elements := make([]Element, len(s.Elements))
		for j, el := range s.Elements {
			el.IsEditing = false
			elements[j] = el
		}
		content, err := json.Marshal(pageContent{Elements: elements, BackgroundColor: s.BackgroundColor})
		if err != nil {
			return slideDescriptor{}, errors.Wrapf(err, "encode slide %d", i+1)
		}
		d.SlidePages = append(d.SlidePages, slidePage{
			OrderNumber: i + 1,
			Title:       fmt.Sprintf("Slide %d", i+1),
			Content:     string(content),
		})
	}
	return d, nil
}

// Uploader publishes decks to the catalogue API.
type Uploader struct {
	BaseURL  string
	Token    string
	Exporter Exporter
	Client   *http.Client
	Log      *logrus.Entry
	Now      func() time.Time
}

func NewUploader(cfg *Config, log *logrus.Entry) *Uploader {
	return &Uploader{
		BaseURL:  strings.TrimRight(cfg.APIURL, "/"),
		Token:    cfg.APIToken,
		Exporter: PPTXExporter{},
		Client:   &http.Client{Timeout: 60 * time.Second},
		Log:      log,
		Now:      time.Now,
	}
}

// UploadResult describes a successful upload.
type UploadResult struct {
	Status   int
	FileName string
	Size     int
	Body     []byte
}

// Upload validates meta, exports doc and posts both as one multipart form.
// Nothing is sent when validation or export fails.
func (u *Uploader) Upload(ctx context.Context, meta SlideMetadata, doc Document) (*UploadResult, error) {
	meta = meta.Trimmed()
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if u.BaseURL == "" {
		return nil, &ValidationError{Fields: map[string]string{"apiURL": "no API URL is configured"}}
	}
	file, err := u.Exporter.Export(ctx, doc)
	if err != nil {
		return nil, errors.Wrap(err, "export deck")
	}
	if len(file) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"file": "file is empty"}}
	}
	desc, err := buildDescriptor(meta, doc)
	if err != nil {
		return nil, err
	}
	descJSON, err := json.Marshal(desc)
	if err != nil {
		return nil, errors.Wrap(err, "encode descriptor")
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	name := ExportFileName(meta.Title, now())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("slide", string(descJSON)); err != nil {
		return nil, errors.Wrap(err, "write slide field")
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, errors.Wrap(err, "create file field")
	}
	if _, err := fw.Write(file); err != nil {
		return nil, errors.Wrap(err, "write file field")
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.BaseURL+"/slides", &body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	log := u.logger().WithFields(logrus.Fields{"file": name, "slides": len(doc.Slides), "bytes": len(file)})
	log.Info("uploading deck")
	resp, err := client.Do(req)
	if err != nil {
		log.WithError(err).Error("upload failed")
		return nil, errors.Wrap(err, "post deck")
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithField("status", resp.StatusCode).Error("upload rejected")
		return nil, errors.Errorf("upload failed: %s: %s", resp.Status, excerpt(respBody, 200))
	}
	log.WithField("status", resp.StatusCode).Info("deck uploaded")
	return &UploadResult{Status: resp.StatusCode, FileName: name, Size: len(file), Body: respBody}, nil
}

func (u *Uploader) logger() *logrus.Entry {
	if u.Log != nil {
		return u.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func excerpt(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
