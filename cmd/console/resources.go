package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rgpvpanel/console/internal/model"
	pdfutil "github.com/rgpvpanel/console/internal/pdf"
)

var errUploadsDisabled = errors.New("file uploads are not configured, set CONSOLE_S3_ENDPOINT and credentials")

type resourceFlags struct {
	title       string
	typ         string
	program     string
	branch      string
	semester    int
	subjectCode string
	subjectName string
	fileURL     string
	videoURL    string
	file        string
}

func (f *resourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Resource title")
	cmd.Flags().StringVar(&f.typ, "type", string(model.TypeNote), "NOTE, PYQ, SYLLABUS or VIDEO")
	cmd.Flags().StringVar(&f.program, "program", model.Programs[0], "Program")
	cmd.Flags().StringVar(&f.branch, "branch", model.DefaultBranches[0], "Branch code")
	cmd.Flags().IntVar(&f.semester, "semester", model.Semesters[0], "Semester (1-8)")
	cmd.Flags().StringVar(&f.subjectCode, "subject-code", "", "Subject code, e.g. CS-301")
	cmd.Flags().StringVar(&f.subjectName, "subject-name", "", "Subject name (looked up from loaded resources when empty)")
	cmd.Flags().StringVar(&f.fileURL, "file-url", "", "Link to the PDF")
	cmd.Flags().StringVar(&f.videoURL, "video-url", "", "Link to the video (type VIDEO)")
	cmd.Flags().StringVar(&f.file, "file", "", "Local PDF to upload and link instead of --file-url")
}

// apply copies the flags the user set into form.
func (f *resourceFlags) apply(cmd *cobra.Command, form *model.ResourceForm) {
	set := cmd.Flags().Changed
	if set("title") {
		form.Title = f.title
	}
	if set("type") {
		form.Type = model.ResourceType(strings.ToUpper(f.typ))
	}
	if set("program") {
		form.Program = f.program
	}
	if set("branch") {
		form.Branch = f.branch
	}
	if set("semester") {
		form.Semester = f.semester
	}
	if set("subject-code") {
		form.SubjectCode = f.subjectCode
	}
	if set("subject-name") {
		form.SubjectName = f.subjectName
	}
	if set("file-url") {
		form.FileURL = f.fileURL
	}
	if set("video-url") {
		form.VideoURL = f.videoURL
	}
}

func newResourcesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resources",
		Aliases: []string{"pdfs"},
		Short:   "Manage notes, PYQs, syllabi and video resources",
	}
	cmd.AddCommand(
		newResourcesListCmd(c),
		newResourcesCreateCmd(c),
		newResourcesUpdateCmd(c),
		newResourcesDeleteCmd(c),
		newResourcesUploadCmd(c),
	)
	return cmd
}

func newResourcesListCmd(c *cli) *cobra.Command {
	var branch, semester string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources, optionally filtered by branch prefix and semester",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.router(cmd.Context())
			if err != nil {
				return err
			}
			list := r.Dashboard().Resources.Filter(branch, semester)
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSEM\tSUBJECT\tTITLE\tVIEWS")
			for _, res := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\n", res.ID, res.Type, res.Semester, res.SubjectCode, res.Title, res.Views)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&branch, "branch", model.FilterAll, "Subject code prefix (All, CS, BT, AL, IT)")
	cmd.Flags().StringVar(&semester, "sem", model.FilterAll, "Semester or All")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newResourcesCreateCmd(c *cli) *cobra.Command {
	var flags resourceFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.router(ctx)
			if err != nil {
				return err
			}
			view := r.Dashboard().Resources
			flags.apply(cmd, &view.Form)
			if err := c.attachUpload(ctx, &view.Form, flags.file); err != nil {
				return err
			}
			fillSubjectName(r.Dashboard().Subjects.Lookup, &view.Form)
			return c.result(view.Submit(ctx))
		},
	}
	flags.register(cmd)
	return cmd
}

func newResourcesUpdateCmd(c *cli) *cobra.Command {
	var flags resourceFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.router(ctx)
			if err != nil {
				return err
			}
			view := r.Dashboard().Resources
			if err := view.BeginEditByID(args[0]); err != nil {
				return err
			}
			flags.apply(cmd, &view.Form)
			if err := c.attachUpload(ctx, &view.Form, flags.file); err != nil {
				return err
			}
			return c.result(view.Submit(ctx))
		},
	}
	flags.register(cmd)
	return cmd
}

func newResourcesDeleteCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.router(ctx)
			if err != nil {
				return err
			}
			deleted, err := r.Dashboard().Resources.Remove(ctx, args[0], c.confirmer(yes))
			if err != nil {
				return c.result(err)
			}
			if deleted {
				fmt.Fprintln(c.out, "Deleted")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newResourcesUploadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF to object storage and print its link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileURL, info, err := c.uploadPDF(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "URL:   %s\nPages: %d\n", fileURL, info.Pages)
			if info.Snippet != "" {
				fmt.Fprintf(c.out, "Title: %s\n", info.Snippet)
			}
			return nil
		},
	}
}

// attachUpload uploads path, when given, and links it from form. An empty
// title is taken from the first line of the document.
func (c *cli) attachUpload(ctx context.Context, form *model.ResourceForm, path string) error {
	if path == "" {
		return nil
	}
	fileURL, info, err := c.uploadPDF(ctx, path)
	if err != nil {
		return err
	}
	form.FileURL = fileURL
	if form.Title == "" {
		form.Title = info.Snippet
	}
	return nil
}

func (c *cli) uploadPDF(ctx context.Context, path string) (string, pdfutil.Info, error) {
	store, err := c.app.Storage(ctx)
	if err != nil {
		return "", pdfutil.Info{}, err
	}
	if store == nil {
		return "", pdfutil.Info{}, errUploadsDisabled
	}
	data, err := readPDF(path, c.app.Config.MaxUploadSize)
	if err != nil {
		return "", pdfutil.Info{}, err
	}
	info, err := pdfutil.Inspect(data)
	if err != nil {
		return "", info, fmt.Errorf("%s: unreadable pdf: %w", path, err)
	}
	fileURL, err := store.UploadPDF(ctx, filepath.Base(path), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", info, err
	}
	return fileURL, info, nil
}

func readPDF(path string, limit int64) ([]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.Size() > limit {
		return nil, fmt.Errorf("%s exceeds limit (%d bytes)", path, limit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%s: only PDF files supported", path)
	}
	return data, nil
}

// fillSubjectName completes a known subject code with its registered name.
func fillSubjectName(lookup func(string) (model.Subject, bool), form *model.ResourceForm) {
	if form.SubjectName != "" || form.SubjectCode == "" {
		return
	}
	if s, ok := lookup(form.SubjectCode); ok {
		form.SubjectName = s.Name
	}
}
