// Package pdfdoc implements the Document facade described by spec
// section 4.6: the single entry point that owns a Context, a page
// tree, the catalog Ref, and the deferred font/image embedders, and
// exposes the load/create/mutate/save operations a caller drives a
// document's whole lifecycle through. It plays the role the teacher's
// model.Document (Trailer + Catalog, Write/WriteFile) plays, but adds
// the mutable page cache, deferred embedder queue and fontkit
// registration spec section 4.6 calls for on top of an arena instead
// of a pointer graph.
package pdfdoc

import (
	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdffont"
	"github.com/jlmessenger/pdf-lib/pdflog"
	"github.com/jlmessenger/pdf-lib/pdfpage"
	"github.com/jlmessenger/pdf-lib/pdfparse"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// Document holds everything spec section 4.6 names: the Context, the
// catalog Ref, the page tree, the unflushed embedder list, a page
// cache invalidated on mutation, and the registered fontkit.
type Document struct {
	ctx     *pdfctx.Context
	catalog pdfval.Ref
	tree    *pdfpage.Tree
	fontkit pdffont.Fontkit

	pending []embedder

	pageCache  []Page
	cacheValid bool
}

// LoadOptions configures Load, mirroring spec section 6's option
// table for the load call.
type LoadOptions struct {
	// IgnoreEncryption bypasses the EncryptedPdf refusal for a
	// document whose trailer carries /Encrypt.
	IgnoreEncryption bool
	// ParseSpeed is objects materialized per cooperative yield
	// point during parsing; zero means pdfparse's own default
	// (never yield).
	ParseSpeed int
}

// Create builds an empty Document: a fresh Context, an empty page
// tree, and a minimal Catalog pointing at it, matching spec section
// 4.6's create().
func Create() *Document {
	ctx := pdfctx.New()
	tree := pdfpage.New(ctx, pdfpage.DefaultBranchingFactor)

	catalog := pdfval.NewDict()
	catalog.Set("Type", pdfval.Name("Catalog"))
	catalog.Set("Pages", tree.Root())
	catalogRef := ctx.Register(catalog)

	ctx.Trailer.Root = catalogRef

	return &Document{ctx: ctx, catalog: catalogRef, tree: tree}
}

// Load parses data as a complete PDF file and wraps it as a Document,
// matching spec section 4.6's load(). It fails with EncryptedPdf if
// the trailer carries /Encrypt and opts.IgnoreEncryption is false.
func Load(data []byte, opts LoadOptions) (*Document, error) {
	ctx, err := pdfparse.Parse(data, pdfparse.Options{ObjectsPerYield: opts.ParseSpeed})
	if err != nil {
		return nil, err
	}
	if ctx.Trailer.HasEncrypt && !opts.IgnoreEncryption {
		return nil, newError(EncryptedPdf, "document has /Encrypt; pass LoadOptions.IgnoreEncryption to bypass")
	}

	catalogRef := ctx.Trailer.Root
	catalog, _ := ctx.Lookup(catalogRef).(pdfval.Dict)
	pagesRef, _ := catalog.Get("Pages").(pdfval.Ref)

	tree := pdfpage.Load(ctx, pagesRef, pdfpage.DefaultBranchingFactor)

	pdflog.Parse.Printf("loaded document: root=%s pages=%s", catalogRef, pagesRef)
	return &Document{ctx: ctx, catalog: catalogRef, tree: tree}, nil
}

// Context exposes the underlying arena, for callers (e.g. a content-
// stream builder, or CopyPages' Copier) that need to register objects
// of their own alongside the facade's.
func (d *Document) Context() *pdfctx.Context { return d.ctx }

// Catalog returns the Ref of this document's /Catalog object.
func (d *Document) Catalog() pdfval.Ref { return d.catalog }

func (d *Document) invalidateCache() {
	d.cacheValid = false
	d.pageCache = nil
}

// syncCatalogPages re-points the catalog's /Pages entry at the tree's
// current root. A root split (pdfpage/insert.go) or collapse
// (pdfpage/remove.go) replaces the root object with a new one; the
// catalog otherwise keeps pointing at a now-non-root /Pages node,
// which carries a stale /Parent and only part of the tree. Every
// mutation that can move the root calls this before returning.
func (d *Document) syncCatalogPages() {
	root := d.tree.Root()
	catalog, ok := d.ctx.Lookup(d.catalog).(pdfval.Dict)
	if !ok {
		return
	}
	if existing, ok := catalog.Get("Pages").(pdfval.Ref); ok && existing == root {
		return
	}
	catalog.Set("Pages", root)
	d.ctx.Assign(d.catalog, catalog)
}
