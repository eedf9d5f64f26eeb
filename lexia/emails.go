package lexia

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const attachmentField = "archivos"

// GetEmail returns the full details of an email
func (c *Client) GetEmail(ctx context.Context, emailID string) (Object, error) {
	if strings.TrimSpace(emailID) == "" {
		return nil, inputError("email_id is required", map[string]string{"email_id": "is required"})
	}
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/public/api/correo",
		Query:  url.Values{"email_id": {emailID}},
	})
}

// ReplyToEmail replies to a received email. Attachments switch the request to multipart.
func (c *Client) ReplyToEmail(ctx context.Context, params ReplyParams) (Object, error) {
	if params.ReplyType == "" {
		params.ReplyType = BodyTypeText
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if err := checkAttachments(params.Attachments); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"email_id":       params.EmailID,
		"mensaje":        params.Message,
		"tipo_respuesta": params.ReplyType,
	}
	if params.Subject != "" {
		fields["asunto_personalizado"] = params.Subject
	}

	return c.Do(ctx, emailRequest("/public/api/correo/responder", fields, params.Attachments, func() any {
		body := make(map[string]any, len(fields))
		for k, v := range fields {
			body[k] = v
		}
		return body
	}))
}

// SendEmail sends a new email. Attachments switch the request to multipart,
// in which case recipient lists are sent comma separated.
func (c *Client) SendEmail(ctx context.Context, params SendEmailParams) (Object, error) {
	if params.BodyType == "" {
		params.BodyType = BodyTypeHTML
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if err := checkAttachments(params.Attachments); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"to":        strings.Join(params.To, ", "),
		"subject":   params.Subject,
		"body":      params.Body,
		"body_type": params.BodyType,
	}
	if len(params.CC) > 0 {
		fields["cc"] = strings.Join(params.CC, ", ")
	}
	if len(params.BCC) > 0 {
		fields["bcc"] = strings.Join(params.BCC, ", ")
	}
	if params.ReplyTo != "" {
		fields["reply_to"] = params.ReplyTo
	}
	if params.BodyText != "" {
		fields["body_text"] = params.BodyText
	}

	return c.Do(ctx, emailRequest("/public/api/correo/enviar", fields, params.Attachments, func() any {
		body := map[string]any{
			"to":        params.To,
			"subject":   params.Subject,
			"body":      params.Body,
			"body_type": params.BodyType,
		}
		if len(params.CC) > 0 {
			body["cc"] = params.CC
		}
		if len(params.BCC) > 0 {
			body["bcc"] = params.BCC
		}
		if params.ReplyTo != "" {
			body["reply_to"] = params.ReplyTo
		}
		if params.BodyText != "" {
			body["body_text"] = params.BodyText
		}
		return body
	}))
}

// SendSimpleEmail sends an email to one recipient without attachments
func (c *Client) SendSimpleEmail(ctx context.Context, to, subject, body, bodyType string) (Object, error) {
	return c.SendEmail(ctx, SendEmailParams{
		To:       []string{to},
		Subject:  subject,
		Body:     body,
		BodyType: bodyType,
	})
}

// SendNotificationEmail sends an email rendered from one of the service's templates,
// e.g. "document_processed" or "queue_completed".
func (c *Client) SendNotificationEmail(ctx context.Context, to []string, templateType string, templateData Object) (Object, error) {
	if len(to) == 0 {
		return nil, inputError("to must contain at least one recipient", map[string]string{"to": "is required"})
	}
	if strings.TrimSpace(templateType) == "" {
		return nil, inputError("template_type is required", map[string]string{"template_type": "is required"})
	}
	if templateData == nil {
		templateData = Object{}
	}

	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/public/api/correo/notification",
		Body: map[string]any{
			"to":            to,
			"template_type": templateType,
			"template_data": templateData,
		},
	})
}

// emailRequest builds a multipart request when attachments are present and a
// JSON request from jsonBody otherwise.
func emailRequest(path string, fields map[string]string, attachments []Attachment, jsonBody func() any) *Request {
	if len(attachments) == 0 {
		return &Request{Method: http.MethodPost, Path: path, Body: jsonBody()}
	}

	files := make([]File, 0, len(attachments))
	for _, a := range attachments {
		files = append(files, File{
			Field:   attachmentField,
			Name:    a.Filename,
			Content: bytes.NewReader(a.Content),
		})
	}
	return &Request{Method: http.MethodPost, Path: path, Form: fields, Files: files}
}

func checkAttachments(attachments []Attachment) error {
	for i, a := range attachments {
		if strings.TrimSpace(a.Filename) == "" {
			return inputError("attachment file name is required", map[string]string{
				attachmentField: "attachment " + strconv.Itoa(i) + " has no file name",
			})
		}
	}
	return nil
}
