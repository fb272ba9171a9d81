package charsheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-charsheet/internal/assets"
	"github.com/alnah/go-charsheet/internal/fonts"
	"github.com/alnah/go-charsheet/internal/pdfform"
	"github.com/alnah/go-charsheet/internal/pipeline"
)

// TemplateSource supplies the sheet template bytes. A missing template is
// reported with an error matching ErrTemplateNotFound.
type TemplateSource interface {
	LoadTemplate(ctx context.Context) ([]byte, error)
}

// TemplateFile reads the template from a path on disk.
type TemplateFile string

// LoadTemplate implements TemplateSource.
func (p TemplateFile) LoadTemplate(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(string(p)) // #nosec G304 -- path from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, p)
		}
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return data, nil
}

// Composer builds character sheet PDFs. It is safe for concurrent use;
// every Generate call works on its own copy of the template.
type Composer struct {
	verifier  OwnerVerifier
	loader    CharacterLoader
	templates TemplateSource
	renderer  Renderer

	fonts   *fonts.Loader
	assets  assets.AssetLoader
	aliases FieldAliasTable
	overlay []OverlayField
	timeout time.Duration
	logger  *zap.Logger

	sections *sectionBuilder
}

// NewComposer creates a Composer. The section style and layout are loaded
// and parsed here, so asset problems surface before the first request.
func NewComposer(verifier OwnerVerifier, loader CharacterLoader, templates TemplateSource, renderer Renderer, opts ...Option) (*Composer, error) {
	if verifier == nil || loader == nil || templates == nil || renderer == nil {
		return nil, errors.New("charsheet: NewComposer requires a verifier, loader, template source and renderer")
	}

	c := &Composer{
		verifier:  verifier,
		loader:    loader,
		templates: templates,
		renderer:  renderer,
		fonts:     fonts.NewLoader(nil),
		assets:    assets.NewEmbeddedLoader(),
		aliases:   DefaultAliasTable,
		overlay:   DefaultOverlayTable,
		timeout:   defaultTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	style, err := c.assets.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading section style: %w", err)
	}
	tmpl, err := c.assets.LoadTemplate(assets.SectionTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading section layout: %w", err)
	}
	layout, err := pipeline.NewLayout(tmpl, style)
	if err != nil {
		return nil, err
	}
	c.sections = &sectionBuilder{md: pipeline.NewGoldmarkConverter(), layout: layout}

	return c, nil
}

// sectionPage is what every generated section document shares.
type sectionPage struct {
	fontCSS  string
	subtitle string
}

// sectionResult is the outcome of one generated section.
type sectionResult struct {
	section Section
	pdf     []byte
	err     error
}

// Generate builds the sheet for characterID on behalf of callerID.
//
// Ownership is checked before anything is loaded. Authorization, loading,
// font and page-0 failures are returned. A generated section that fails is
// logged and left out, unless cfg.StrictSections is set.
func (c *Composer) Generate(ctx context.Context, characterID, callerID string, cfg PrintConfig) ([]byte, error) {
	sections := cfg.ordered()
	log := c.logger.With(zap.String("character", characterID))

	// Authorize
	ok, err := c.verifier.VerifyOwner(ctx, characterID, callerID)
	if err != nil {
		return nil, fmt.Errorf("verifying owner: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnauthorized, characterID)
	}

	// Load
	ch, err := c.loader.LoadCharacter(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("loading character: %w", err)
	}
	if ch == nil {
		return nil, fmt.Errorf("%w: %q", ErrCharacterNotFound, characterID)
	}
	tmpl, err := c.templates.LoadTemplate(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}

	// Embed fonts
	set, err := c.fonts.Load()
	if err != nil {
		return nil, err
	}

	doc, err := pdfform.Open(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	// Fill page 0
	if slices.Contains(sections, SectionCharacter) {
		strategy, err := chooseStrategy(doc)
		if err != nil {
			return nil, err
		}
		log.Debug("filling character page", zap.Stringer("strategy", strategy))
		f := filler{aliases: c.aliases, overlay: c.overlay}
		if err := f.fill(strategy, doc, computeValues(ch), set.Regular); err != nil {
			return nil, err
		}
	}

	// Sections render concurrently; pages are appended in order.
	page := sectionPage{fontCSS: set.CSS(), subtitle: joinNonEmpty(" · ", ch.Name, cfg.Stamp)}
	results, err := c.renderSections(ctx, ch, page, sections, cfg.StrictSections)
	if err != nil {
		return nil, err
	}
	// A caller that gave up gets its error, not a sheet missing every section.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.err == nil && len(r.pdf) > 0 {
			if _, err := doc.AppendPages(r.pdf); err != nil {
				r.err = err
			}
		}
		if r.err == nil {
			continue
		}
		serr := &SectionError{Section: r.section, Err: r.err}
		if cfg.StrictSections {
			return nil, serr
		}
		log.Warn("section omitted", zap.String("section", r.section.String()), zap.Error(r.err))
	}

	if cfg.ReadOnly {
		if err := doc.SetReadOnly(); err != nil {
			return nil, fmt.Errorf("%w: read-only: %v", ErrFill, err)
		}
	}

	return doc.Bytes()
}

// renderSections renders every requested, non-empty generated section.
// Results keep the order of sections. In strict mode the first failure
// cancels the rest and is returned as a *SectionError.
func (c *Composer) renderSections(ctx context.Context, ch *Character, page sectionPage, sections []Section, strict bool) ([]sectionResult, error) {
	var todo []Section
	for _, s := range sections {
		if s != SectionCharacter && hasContent(s, ch) {
			todo = append(todo, s)
		}
	}
	results := make([]sectionResult, len(todo))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range todo {
		g.Go(func() error {
			pdf, err := c.renderSection(gctx, s, ch, page)
			results[i] = sectionResult{section: s, pdf: pdf, err: err}
			if err != nil && strict {
				return &SectionError{Section: s, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// renderSection runs the parse, lay-out and rasterize stages for s.
func (c *Composer) renderSection(ctx context.Context, s Section, ch *Character, page sectionPage) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	html, err := c.sections.HTML(ctx, s, ch, page.fontCSS, page.subtitle)
	if err != nil {
		return nil, err
	}
	if html == "" {
		return nil, nil
	}
	return c.renderer.Render(ctx, html)
}
