// This tool creates a minimal PDF file exercising the Document facade
// end to end: a blank page, a standard font embed, and a save to disk.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jlmessenger/pdf-lib/pdfdoc"
	"github.com/jlmessenger/pdf-lib/pdfpage"
)

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func main() {
	out := flag.String("o", "out.pdf", "output PDF path")
	objectStreams := flag.Bool("object-streams", true, "write using PDF 1.5+ cross-reference/object streams")
	pages := flag.Int("pages", 1, "number of blank Letter-sized pages to add")
	flag.Parse()

	doc := pdfdoc.Create()

	for i := 0; i < *pages; i++ {
		_, err := doc.AddPage(pdfdoc.Sized(pdfpage.SizeLetter[0], pdfpage.SizeLetter[1]))
		check(err)
	}

	if _, err := doc.EmbedStandardFont("Helvetica"); err != nil {
		check(err)
	}

	opts := pdfdoc.DefaultSaveOptions()
	opts.UseObjectStreams = *objectStreams
	data, err := doc.Save(opts)
	check(err)

	check(os.WriteFile(*out, data, 0o644))
	fmt.Printf("wrote %s: %d pages, %d bytes\n", *out, doc.GetPageCount(), len(data))
}
