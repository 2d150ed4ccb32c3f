package pdfdoc

import (
	"github.com/jlmessenger/pdf-lib/pdfcopy"
	"github.com/jlmessenger/pdf-lib/pdfpage"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// Page is a handle onto one /Page leaf: its Ref plus the Document it
// belongs to. Passing a Page to a different Document's AddPage or
// InsertPage is rejected (ForeignPage) unless it was produced by that
// Document's own CopyPages.
type Page struct {
	ref   pdfval.Ref
	owner *Document
}

func (Page) isPageArg() {}

// Ref returns the Ref of this page's /Page dict.
func (p Page) Ref() pdfval.Ref { return p.ref }

// PageArg is the optional argument AddPage/InsertPage accept, per spec
// section 4.6: omitted entirely (blank A4), Sized(w, h) (blank, given
// dimensions), or an existing Page (re-linked if local to the
// receiving Document, rejected as ForeignPage otherwise).
type PageArg interface{ isPageArg() }

type sizedPage struct{ width, height float64 }

func (sizedPage) isPageArg() {}

// Sized builds a PageArg requesting a new blank page of the given
// dimensions, in PDF points.
func Sized(width, height float64) PageArg { return sizedPage{width, height} }

// GetPageCount returns the number of leaves currently in the page
// tree.
func (d *Document) GetPageCount() int {
	return d.tree.Count()
}

// GetPageIndices returns 0..GetPageCount()-1, the valid rendering
// indices, matching spec section 4.6's get_page_indices().
func (d *Document) GetPageIndices() []int {
	n := d.tree.Count()
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// GetPages returns every page in rendering order (pre-order DFS of the
// page tree), caching the result until the next mutation, matching
// spec section 5's page-cache-invalidates-on-mutation rule.
func (d *Document) GetPages() []Page {
	if d.cacheValid {
		return d.pageCache
	}
	var pages []Page
	d.tree.Traverse(func(ref pdfval.Ref, leaf pdfval.Dict) {
		pages = append(pages, Page{ref: ref, owner: d})
	})
	d.pageCache = pages
	d.cacheValid = true
	return pages
}

// AddPage appends a page at the end of the document, matching spec
// section 4.6's add_page(page?). With no argument, a blank A4 page is
// created.
func (d *Document) AddPage(arg ...PageArg) (Page, error) {
	return d.InsertPage(d.tree.Count(), arg...)
}

// InsertPage places a page at rendering index index, matching spec
// section 4.6's insert_page(index, page?).
func (d *Document) InsertPage(index int, arg ...PageArg) (Page, error) {
	leafRef, err := d.resolvePageArg(arg)
	if err != nil {
		return Page{}, err
	}

	parentRef, err := d.tree.Insert(leafRef, index)
	if err != nil {
		return Page{}, err
	}
	leaf, _ := d.ctx.Lookup(leafRef).(pdfval.Dict)
	leaf.Set("Parent", parentRef)
	d.ctx.Assign(leafRef, leaf)

	d.syncCatalogPages()
	d.invalidateCache()
	return Page{ref: leafRef, owner: d}, nil
}

// resolvePageArg builds or validates the leaf Ref an Insert call needs,
// per spec section 4.6's three page-argument shapes.
func (d *Document) resolvePageArg(arg []PageArg) (pdfval.Ref, error) {
	if len(arg) == 0 {
		return d.newBlankLeaf(pdfpage.SizeA4), nil
	}
	switch v := arg[0].(type) {
	case sizedPage:
		return d.newBlankLeaf([2]float64{v.width, v.height}), nil
	case Page:
		if v.owner != d {
			return pdfval.Ref{}, newError(ForeignPage, "page belongs to another Document; use CopyPages first")
		}
		return v.ref, nil
	default:
		return pdfval.Ref{}, newError(InvalidInputType, "unrecognized page argument")
	}
}

func (d *Document) newBlankLeaf(size [2]float64) pdfval.Ref {
	leaf := pdfpage.NewLeaf(size[0], size[1])
	return d.ctx.Register(leaf)
}

// RemovePage detaches the leaf at rendering index index and releases
// its object number, matching spec section 4.6's remove_page(index).
// Fails with RemovePageFromEmptyDocument if the document currently has
// no pages.
func (d *Document) RemovePage(index int) error {
	if d.tree.Count() == 0 {
		return newError(RemovePageFromEmptyDocument, "document has no pages to remove")
	}
	removed, err := d.tree.Remove(index)
	if err != nil {
		return err
	}
	d.ctx.Delete(removed)
	d.syncCatalogPages()
	d.invalidateCache()
	return nil
}

// CopyPages copies the leaves at the given src indices (with every
// object they reach: resources, content streams, fonts, images) into
// d's Context, per spec section 4.6's copy_pages. It flushes src first
// so embedders pending there are materialized before copying. The
// returned Pages are local to d but not yet linked into d's page tree;
// pass each to AddPage/InsertPage to place it.
func (d *Document) CopyPages(src *Document, indices []int) ([]Page, error) {
	if err := src.Flush(); err != nil {
		return nil, err
	}

	copier := pdfcopy.New(src.ctx, d.ctx)
	out := make([]Page, len(indices))
	for i, idx := range indices {
		_, leaf, err := src.tree.LeafAt(idx)
		if err != nil {
			return nil, err
		}
		// A leaf's /Parent points back at its source /Pages node;
		// copying it as-is would walk up into that node and back
		// down through every sibling /Kids entry, dragging the whole
		// source tree along as orphans. Strip it before copying —
		// InsertPage sets a fresh /Parent once the page is placed.
		detached := leaf.Clone().(pdfval.Dict)
		detached.Delete("Parent")
		localRef := d.ctx.Register(copier.CopyValue(detached))
		out[i] = Page{ref: localRef, owner: d}
	}
	return out, nil
}
