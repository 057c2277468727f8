package campaign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/mergeflow/pkg/merge"
	"github.com/dmitrymomot/mergeflow/pkg/placeholder"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
	"github.com/dmitrymomot/mergeflow/pkg/sheet"
	"github.com/dmitrymomot/mergeflow/pkg/template"
)

// Generator creates and regenerates per-recipient documents and PDFs.
type Generator struct {
	recipients sheet.Store
	templates  template.Store
	artifacts  ArtifactStore
	opts       *options
	cfg        Config
}

// NewGenerator builds a generator. Without WithConverter the PDF
// operations fail with ErrNoConverter.
func NewGenerator(cfg Config, recipients sheet.Store, templates template.Store, artifacts ArtifactStore, opts ...Option) *Generator {
	return &Generator{
		recipients: recipients,
		templates:  templates,
		artifacts:  artifacts,
		opts:       newOptions(opts),
		cfg:        cfg.WithDefaults(),
	}
}

// prepared is the shared state of one generation operation.
type prepared struct {
	tmpl     *template.Template
	manifest *placeholder.Manifest
	table    *sheet.Table
}

// prepare loads the template and table once per operation. The manifest
// is recomputed every time so template edits apply to the next run.
func (g *Generator) prepare(ctx context.Context) (*prepared, error) {
	tmpl, err := g.templates.Load(ctx, g.cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplateRead, g.cfg.Template, err)
	}

	manifest := placeholder.Parse(tmpl.Document.Text())
	if conflicts := manifest.Conflicts(); len(conflicts) > 0 {
		g.opts.logger.WarnContext(ctx, "fields used as both required and optional are treated as optional",
			slog.String("template", tmpl.ID),
			slog.Any("fields", conflicts),
		)
	}

	if err := g.recipients.EnsureColumns(ctx, recipient.ReservedColumns...); err != nil {
		return nil, errors.Join(ErrRecipientsRead, err)
	}
	table, err := g.recipients.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrRecipientsRead, err)
	}
	return &prepared{tmpl: tmpl, manifest: manifest, table: table}, nil
}

// Validate checks every addressable recipient against the template's
// required fields without generating anything.
func (g *Generator) Validate(ctx context.Context) (*Run, error) {
	ctx, b := g.opts.begin(ctx, OpValidate)

	p, err := g.prepare(ctx)
	if err != nil {
		b.finish(ctx, err)
		return b.run, err
	}

	for _, r := range p.table.Addressable() {
		b.run.Total++
		if err := validate(p.manifest, r); err != nil {
			b.fail(ctx, r, err)
			continue
		}
		b.succeed(ctx, r, "valid")
	}

	b.finish(ctx, nil)
	return b.run, nil
}

// CreateDocuments generates a document for every recipient without one.
// Recipients missing required fields are recorded as failed.
func (g *Generator) CreateDocuments(ctx context.Context) (*Run, error) {
	return g.documents(ctx, OpCreateDocs)
}

// RegenerateDocuments overwrites the document of every recipient that has
// one and clears its now stale PDF id.
func (g *Generator) RegenerateDocuments(ctx context.Context) (*Run, error) {
	return g.documents(ctx, OpRegenerateDocs)
}

func (g *Generator) documents(ctx context.Context, op Operation) (*Run, error) {
	ctx, b := g.opts.begin(ctx, op)

	p, err := g.prepare(ctx)
	if err != nil {
		b.finish(ctx, err)
		return b.run, err
	}

	regenerate := op == OpRegenerateDocs
	for _, r := range p.table.Addressable() {
		if err := ctx.Err(); err != nil {
			b.finish(ctx, err)
			return b.run, err
		}

		hasDoc := r.DocID() != ""
		if hasDoc != regenerate {
			continue
		}
		b.run.Total++

		if regenerate {
			err = g.regenerateDocument(ctx, p, r)
		} else {
			err = g.createDocument(ctx, p, r)
		}
		if err != nil {
			b.fail(ctx, r, err)
			continue
		}
		b.succeed(ctx, r, r.DocID())
	}

	b.finish(ctx, nil)
	return b.run, nil
}

func (g *Generator) createDocument(ctx context.Context, p *prepared, r *recipient.Record) error {
	if err := validate(p.manifest, r); err != nil {
		return err
	}

	name := ArtifactName(g.cfg.NameTemplate, p.tmpl.Title(), r)
	art, err := g.artifacts.Put(ctx, g.cfg.DocumentsLocation, name, ContentTypeHTML, renderDocument(p.tmpl, r, name))
	if err != nil {
		return errors.Join(ErrArtifactStore, err)
	}
	return g.setField(ctx, r, recipient.FieldDocID, art.ID)
}

func (g *Generator) regenerateDocument(ctx context.Context, p *prepared, r *recipient.Record) error {
	name := ArtifactName(g.cfg.NameTemplate, p.tmpl.Title(), r)
	if err := g.artifacts.Replace(ctx, r.DocID(), ContentTypeHTML, renderDocument(p.tmpl, r, name)); err != nil {
		return errors.Join(ErrArtifactStore, err)
	}
	return g.InvalidateDerived(ctx, r)
}

// InvalidateDerived clears the PDF id of a recipient whose document changed.
func (g *Generator) InvalidateDerived(ctx context.Context, r *recipient.Record) error {
	if r.PdfID() == "" {
		return nil
	}
	return g.setField(ctx, r, recipient.FieldPdfID, "")
}

// CreatePDFs converts the document of every recipient without a PDF.
// Recipients without a document are skipped.
func (g *Generator) CreatePDFs(ctx context.Context) (*Run, error) {
	return g.pdfs(ctx, OpCreatePDFs)
}

// RegeneratePDFs converts the document of every recipient that has one,
// overwriting existing PDFs.
func (g *Generator) RegeneratePDFs(ctx context.Context) (*Run, error) {
	return g.pdfs(ctx, OpRegeneratePDFs)
}

func (g *Generator) pdfs(ctx context.Context, op Operation) (*Run, error) {
	ctx, b := g.opts.begin(ctx, op)

	if g.opts.converter == nil {
		b.finish(ctx, ErrNoConverter)
		return b.run, ErrNoConverter
	}
	p, err := g.prepare(ctx)
	if err != nil {
		b.finish(ctx, err)
		return b.run, err
	}

	regenerate := op == OpRegeneratePDFs
	for _, r := range p.table.Addressable() {
		if err := ctx.Err(); err != nil {
			b.finish(ctx, err)
			return b.run, err
		}

		if regenerate && r.DocID() == "" {
			continue
		}
		if !regenerate && r.PdfID() != "" {
			continue
		}
		b.run.Total++

		if r.DocID() == "" {
			b.skip(ctx, r, ErrNoDocument.Error())
			continue
		}
		if err := g.convert(ctx, p, r); err != nil {
			b.fail(ctx, r, err)
			continue
		}
		b.succeed(ctx, r, r.PdfID())
	}

	b.finish(ctx, nil)
	return b.run, nil
}

func (g *Generator) convert(ctx context.Context, p *prepared, r *recipient.Record) error {
	doc, err := g.artifacts.Get(ctx, r.DocID())
	if err != nil {
		return errors.Join(ErrArtifactStore, err)
	}

	name := ArtifactName(g.cfg.NameTemplate, p.tmpl.Title(), r)
	pdf, err := g.opts.converter.Convert(ctx, name, doc)
	if err != nil {
		return errors.Join(ErrArtifactStore, err)
	}

	if id := r.PdfID(); id != "" {
		if err := g.artifacts.Replace(ctx, id, ContentTypePDF, pdf); err != nil {
			return errors.Join(ErrArtifactStore, err)
		}
		return nil
	}

	art, err := g.artifacts.Put(ctx, g.cfg.PDFsLocation, name, ContentTypePDF, pdf)
	if err != nil {
		return errors.Join(ErrArtifactStore, err)
	}
	return g.setField(ctx, r, recipient.FieldPdfID, art.ID)
}

// setField writes a cell and mirrors it on the in-memory record.
func (g *Generator) setField(ctx context.Context, r *recipient.Record, field, value string) error {
	return setField(ctx, g.recipients, r, field, value)
}

func setField(ctx context.Context, store sheet.Store, r *recipient.Record, field, value string) error {
	if err := store.SetCell(ctx, r.Row, field, value); err != nil {
		return fmt.Errorf("campaign: write %s for row %d: %w", field, r.Row, err)
	}
	r.Set(field, value)
	return nil
}

func validate(m *placeholder.Manifest, r *recipient.Record) error {
	v := recipient.Validate(m, r)
	if v.Valid && r.HasValidEmail() {
		return nil
	}
	verr := &ValidationError{Missing: v.Missing}
	if !r.HasValidEmail() {
		verr.Invalid = []string{recipient.FieldEmail}
	}
	return verr
}

// checkEmail rejects a malformed address before anything reaches the transport.
func checkEmail(r *recipient.Record) error {
	if !r.HasValidEmail() {
		return &ValidationError{Invalid: []string{recipient.FieldEmail}}
	}
	return nil
}

func renderDocument(tmpl *template.Template, r *recipient.Record, name string) []byte {
	return htmlPage(name, merge.Document(tmpl.Document, r).Markup())
}
