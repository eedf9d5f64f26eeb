package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lexia/kurai/lexia"
)

// fsys is where attachments are read from
var fsys afero.Fs = afero.NewOsFs()

var (
	mailTo       []string
	mailCC       []string
	mailBCC      []string
	mailSubject  string
	mailBody     string
	mailBodyType string
	mailReplyTo  string
	mailBodyText string
	attachments  []string

	replyMessage string
	replyType    string
	replySubject string

	templateType string
	templateData string
)

// emailsCmd groups email commands
var emailsCmd = &cobra.Command{
	Use:     "emails",
	Aliases: []string{"email", "correo"},
	Short:   "Read, send and answer email",
}

var getEmailCmd = &cobra.Command{
	Use:     "get ID",
	Short:   "Show an email",
	Args:    cobra.ExactArgs(1),
	PreRunE: connect,
	RunE:    runGetEmail,
}

var sendEmailCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an email",
	Example: `  kurai emails send --to ana@example.com --subject "Factura" --body "<p>Adjunta</p>" \
    --attach factura.pdf`,
	Args:    cobra.NoArgs,
	PreRunE: connect,
	RunE:    runSendEmail,
}

var replyEmailCmd = &cobra.Command{
	Use:     "reply ID",
	Short:   "Reply to a received email",
	Args:    cobra.ExactArgs(1),
	PreRunE: connect,
	RunE:    runReplyEmail,
}

var notifyCmd = &cobra.Command{
	Use:     "notify",
	Short:   "Send a templated notification email",
	Example: `  kurai emails notify --to ops@example.com --template document_processed --data '{"document_id":42}'`,
	Args:    cobra.NoArgs,
	PreRunE: connect,
	RunE:    runNotify,
}

func init() {
	rootCmd.AddCommand(emailsCmd)
	emailsCmd.AddCommand(getEmailCmd, sendEmailCmd, replyEmailCmd, notifyCmd)

	f := sendEmailCmd.Flags()
	f.StringSliceVar(&mailTo, "to", nil, "recipient (repeatable or comma separated)")
	f.StringVar(&mailSubject, "subject", "", "subject")
	f.StringVar(&mailBody, "body", "", "message body")
	f.StringVar(&mailBodyType, "body-type", lexia.BodyTypeHTML, "body type: html or texto")
	f.StringSliceVar(&mailCC, "cc", nil, "carbon copy recipient")
	f.StringSliceVar(&mailBCC, "bcc", nil, "blind carbon copy recipient")
	f.StringVar(&mailReplyTo, "reply-to", "", "reply-to address")
	f.StringVar(&mailBodyText, "body-text", "", "plain text alternative of an html body")
	f.StringArrayVar(&attachments, "attach", nil, "file to attach (repeatable)")
	_ = sendEmailCmd.MarkFlagRequired("to")
	_ = sendEmailCmd.MarkFlagRequired("subject")
	_ = sendEmailCmd.MarkFlagRequired("body")

	f = replyEmailCmd.Flags()
	f.StringVar(&replyMessage, "message", "", "reply text")
	f.StringVar(&replyType, "type", lexia.BodyTypeText, "reply type: html or texto")
	f.StringVar(&replySubject, "subject", "", "custom subject")
	f.StringArrayVar(&attachments, "attach", nil, "file to attach (repeatable)")
	_ = replyEmailCmd.MarkFlagRequired("message")

	f = notifyCmd.Flags()
	f.StringSliceVar(&mailTo, "to", nil, "recipient (repeatable or comma separated)")
	f.StringVar(&templateType, "template", "", "template type, e.g. document_processed")
	f.StringVar(&templateData, "data", "", "template data as a JSON object")
	_ = notifyCmd.MarkFlagRequired("to")
	_ = notifyCmd.MarkFlagRequired("template")
}

// readAttachments loads the named files into memory
func readAttachments(paths []string) ([]lexia.Attachment, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	out := make([]lexia.Attachment, 0, len(paths))
	for _, path := range paths {
		content, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment: %w", err)
		}
		out = append(out, lexia.Attachment{
			Filename: filepath.Base(path),
			Content:  content,
		})
	}
	return out, nil
}

func runGetEmail(cmd *cobra.Command, args []string) error {
	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.GetEmail(ctx, args[0])
	})
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}

func runSendEmail(cmd *cobra.Command, args []string) error {
	files, err := readAttachments(attachments)
	if err != nil {
		return err
	}

	params := lexia.SendEmailParams{
		To:          mailTo,
		Subject:     mailSubject,
		Body:        mailBody,
		BodyType:    mailBodyType,
		CC:          mailCC,
		BCC:         mailBCC,
		ReplyTo:     mailReplyTo,
		BodyText:    mailBodyText,
		Attachments: files,
	}

	logger.Info().
		Strs("to", mailTo).
		Int("attachments", len(files)).
		Msg("Sending email")

	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.SendEmail(ctx, params)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, func(w io.Writer) error {
		fmt.Fprintf(w, "✓ Email sent to %s\n", strings.Join(mailTo, ", "))
		return nil
	})
}

func runReplyEmail(cmd *cobra.Command, args []string) error {
	files, err := readAttachments(attachments)
	if err != nil {
		return err
	}

	params := lexia.ReplyParams{
		EmailID:     args[0],
		Message:     replyMessage,
		ReplyType:   replyType,
		Subject:     replySubject,
		Attachments: files,
	}

	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.ReplyToEmail(ctx, params)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, func(w io.Writer) error {
		fmt.Fprintf(w, "✓ Reply sent for email %s\n", args[0])
		return nil
	})
}

func runNotify(cmd *cobra.Command, args []string) error {
	data, err := parseObject("data", templateData)
	if err != nil {
		return err
	}

	result, err := call(cmd.Context(), func(ctx context.Context) (lexia.Object, error) {
		return client.SendNotificationEmail(ctx, mailTo, templateType, data)
	})
	if err != nil {
		return err
	}

	return render(cmd, result, nil)
}
