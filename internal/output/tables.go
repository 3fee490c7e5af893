package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/yourusername/vornify-cli/internal/client"
	"github.com/yourusername/vornify-cli/internal/printful"
	"github.com/yourusername/vornify-cli/internal/state"
)

// PrintCollectionsTable prints per-collection storage usage, largest first
func PrintCollectionsTable(w io.Writer, collections []client.CollectionStats) {
	table := tablewriter.NewWriter(w)
	table.Header("Collection", "Documents", "Size", "Storage", "Avg Doc", "Indexes")

	sorted := make([]client.CollectionStats, len(collections))
	copy(sorted, collections)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Size > sorted[j].Size
	})

	for _, c := range sorted {
		table.Append(
			truncate(c.Name, 30),
			fmt.Sprintf("%d", c.DocumentCount),
			FormatBytes(c.Size),
			FormatBytes(c.StorageSize),
			FormatBytes(c.AvgDocumentSize),
			fmt.Sprintf("%d", c.Indexes),
		)
	}

	table.Render()
}

// PrintStorageSummary prints database totals above the collections table
func PrintStorageSummary(w io.Writer, stats *client.StorageStats) {
	fmt.Fprintf(w, "Database: %s\n", stats.Database)
	if stats.Timestamp != "" {
		fmt.Fprintf(w, "Sampled: %s\n", stats.Timestamp)
	}
	fmt.Fprintf(w, "Total size: %s\n", FormatBytes(stats.Stats.TotalSize))
	fmt.Fprintf(w, "Storage size: %s\n", FormatBytes(stats.Stats.StorageSize))
	fmt.Fprintf(w, "Index size: %s (%d indexes)\n", FormatBytes(stats.Stats.TotalIndexSize), stats.Stats.Indexes)
	if stats.Stats.FreeSpace > 0 {
		fmt.Fprintf(w, "Free space: %s\n", FormatBytes(stats.Stats.FreeSpace))
	}
	fmt.Fprintln(w)
	PrintCollectionsTable(w, stats.Stats.Collections)
}

// PrintHistoryTable prints recorded uploads
func PrintHistoryTable(w io.Writer, entries []state.UploadEntry) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "File", "Title", "Size", "Frames", "Uploaded")

	for _, e := range entries {
		table.Append(
			e.ID,
			truncate(e.Filename, 30),
			truncate(e.Title, 25),
			FormatBytes(float64(e.Size)),
			fmt.Sprintf("%d", e.Frames),
			e.UploadedAt.Local().Format("2006-01-02 15:04"),
		)
	}

	table.Render()
}

// PrintProductsTable prints store products sorted by name
func PrintProductsTable(w io.Writer, products []printful.Product) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "External ID", "Variants", "Synced")

	sorted := make([]printful.Product, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	for _, p := range sorted {
		table.Append(
			fmt.Sprintf("%d", p.ID),
			truncate(p.Name, 35),
			truncate(p.ExternalID, 20),
			fmt.Sprintf("%d", p.Variants),
			fmt.Sprintf("%d/%d", p.Synced, p.Variants),
		)
	}

	table.Render()
}

// PrintProductDetail prints one product and its variants
func PrintProductDetail(w io.Writer, d *printful.ProductDetail) {
	fmt.Fprintf(w, "Product ID: %d\n", d.SyncProduct.ID)
	fmt.Fprintf(w, "Name: %s\n", d.SyncProduct.Name)
	fmt.Fprintf(w, "External ID: %s\n", d.SyncProduct.ExternalID)
	if d.SyncProduct.ThumbnailURL != "" {
		fmt.Fprintf(w, "Thumbnail: %s\n", d.SyncProduct.ThumbnailURL)
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.Header("Variant", "Name", "SKU", "Price", "Synced")
	for _, v := range d.SyncVariants {
		synced := ""
		if v.Synced {
			synced = "✓"
		}
		table.Append(
			fmt.Sprintf("%d", v.ID),
			truncate(v.Name, 35),
			v.SKU,
			strings.TrimSpace(v.RetailPrice+" "+v.Currency),
			synced,
		)
	}
	table.Render()
}

// Helper functions

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// FormatBytes renders a byte count with a binary unit
func FormatBytes(n float64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%.0f B", n)
	}
	units := []string{"KiB", "MiB", "GiB", "TiB"}
	i := -1
	for n >= unit && i < len(units)-1 {
		n /= unit
		i++
	}
	return fmt.Sprintf("%.1f %s", n, units[i])
}
