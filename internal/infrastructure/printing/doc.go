// Package printing turns client listings into PDF documents.
//
// Listings are rendered to HTML with html/template and printed by a headless
// Chrome driven through chromedp:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{RemoteURL: "ws://chrome:9222"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	printer := NewListingPrinter(renderer)
//	pdf, err := printer.Print(ctx, &Listing{Title: "Listado de Clientes", ...})
package printing
