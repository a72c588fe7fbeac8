package backend

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/sandevgo/docchat/internal/core"
)

const (
	audioField    = "audio_file"
	audioFilename = "recording.webm"
	audioMIME     = "audio/webm"
	documentField = "file"
)

type chatRequest struct {
	Message        string      `json:"message"`
	CollectionName *string     `json:"collection_name"`
	History        []core.Turn `json:"history"`
}

// Chat sends one message. History is always sent empty; every exchange is
// independent from the server's point of view.
func (c *Client) Chat(ctx context.Context, message string, collection *string) (string, error) {
	payload := chatRequest{
		Message:        message,
		CollectionName: collection,
		History:        []core.Turn{},
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/chat", payload)
	if err != nil {
		return "", err
	}

	var result struct {
		Answer *string `json:"answer"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return "", err
	}
	if result.Answer == nil {
		return "", fmt.Errorf("%w: missing answer", ErrMalformed)
	}
	return *result.Answer, nil
}

// Transcribe uploads a recorded clip and returns the English transcript,
// which is empty when the server could not make sense of the audio.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, audioField, audioFilename))
	header.Set("Content-Type", audioMIME)

	body, contentType := multipartBody(func(w *multipart.Writer) error {
		part, err := w.CreatePart(header)
		if err != nil {
			return err
		}
		_, err = part.Write(audio)
		return err
	})

	resp, err := c.doRequest(ctx, http.MethodPost, "/transcribe-audio/", body, contentType)
	if err != nil {
		return "", err
	}

	var result struct {
		TextEnglish string `json:"text_english"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return "", err
	}
	return result.TextEnglish, nil
}

// UploadPDF streams a document and returns the collection the server
// created for it.
func (c *Client) UploadPDF(ctx context.Context, name string, r io.Reader) (string, error) {
	body, contentType := multipartBody(func(w *multipart.Writer) error {
		part, err := w.CreateFormFile(documentField, name)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, r)
		return err
	})

	resp, err := c.doRequest(ctx, http.MethodPost, "/upload-pdf/", body, contentType)
	if err != nil {
		return "", err
	}

	var result struct {
		CollectionName string `json:"collection_name"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return "", err
	}
	if result.CollectionName == "" {
		return "", fmt.Errorf("%w: missing collection_name", ErrMalformed)
	}
	return result.CollectionName, nil
}

func (c *Client) Status(ctx context.Context, collectionID string) (core.IngestStatus, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/status/"+url.PathEscape(collectionID), nil)
	if err != nil {
		return "", err
	}

	var result struct {
		Status core.IngestStatus `json:"status"`
	}
	if err := decodeResponse(resp, &result); err != nil {
		return "", err
	}
	return result.Status, nil
}

// UserInfo retries transient failures; an empty result means guest.
func (c *Client) UserInfo(ctx context.Context) (core.UserInfo, error) {
	var info core.UserInfo
	err := c.retrier.Do(ctx, func() error {
		resp, err := c.doJSON(ctx, http.MethodGet, "/user_info", nil)
		if err != nil {
			return err
		}
		return decodeResponse(resp, &info)
	})
	if err != nil {
		return core.UserInfo{}, err
	}
	return info, nil
}

// multipartBody streams the form produced by fill through a pipe.
func multipartBody(fill func(w *multipart.Writer) error) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := fill(mw)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}
