// Command scrm segments an image by size-constrained region merging and
// writes the result as label rasters and renderings.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"sort"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/d-diaz/scrm"
	"github.com/d-diaz/scrm/internal/version"
	"github.com/d-diaz/scrm/overseg"
	"github.com/d-diaz/scrm/pkg/colorutil"
	"github.com/d-diaz/scrm/raster"
)

func main() {
	imagePath := flag.String("image", "", "Path to the input image (PNG, JPEG, or TIFF)")
	labelsPath := flag.String("labels", "", "Path to a 16-bit TIFF oversegmentation (skips the built-in oversegmenters)")
	method := flag.String("method", "slic", "Oversegmentation method: grid, slic, kmeans, or watershed")

	dms := flag.Int("dms", scrm.DefaultParams().Dms, "Desired mean region size in pixels")
	mas := flag.Int("mas", scrm.DefaultParams().Mas, "Maximum allowed region size in pixels")
	mmu := flag.Int("mmu", scrm.DefaultParams().Mmu, "Minimum mapping unit in pixels")
	blur := flag.Float64("blur", 0, "Gaussian blur sigma applied before segmentation (0 disables)")
	rename := flag.Bool("rename", false, "Give every merge result a fresh region id")
	useLab := flag.Bool("lab", false, "Score edges in Lab color space instead of RGB")
	progress := flag.Int("progress", 0, "Print progress every N merges (0 disables)")

	block := flag.Int("block", 16, "Grid method: block size in pixels")
	regions := flag.Int("regions", overseg.DefaultSLICParams().Regions, "SLIC method: target superpixel count")
	colors := flag.Int("colors", overseg.DefaultKMeansParams().Colors, "KMeans method: palette size")
	seeds := flag.Int("seeds", overseg.DefaultWatershedParams().Seeds, "Watershed method: marker count")

	outPath := flag.String("out", "", "Write merged labels as 16-bit TIFF")
	meanPath := flag.String("mean", "", "Write a mean-color rendering as PNG")
	palettePath := flag.String("palette", "", "Write a distinct-color rendering as PNG")
	overlayPath := flag.String("overlay", "", "Write a boundary overlay as PNG")
	opacity := flag.Float64("opacity", 0.6, "Boundary overlay opacity")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("scrm %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}
	if *imagePath == "" {
		fmt.Println("Usage: scrm -image <path> [-labels <tiff>] [-method grid|slic|kmeans|watershed] [-dms 100 -mas 400 -mmu 10] [-out <tiff>] [-mean <png>] [-palette <png>] [-overlay <png>]")
		os.Exit(1)
	}

	// Load image
	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	work := img
	if *blur > 0 {
		work = imaging.Blur(img, *blur)
		fmt.Printf("Pre-blur sigma: %.2f\n", *blur)
	}

	// Initial oversegmentation
	var labels *scrm.Labels
	if *labelsPath != "" {
		lf, err := os.Open(*labelsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open labels: %v\n", err)
			os.Exit(1)
		}
		labels, err = raster.ReadLabels(lf)
		lf.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read labels: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Oversegmentation: %s (%d regions)\n", *labelsPath, labels.Max()+1)
	} else {
		switch *method {
		case "grid":
			labels, err = overseg.Grid(bounds.Dx(), bounds.Dy(), *block)
		case "slic":
			labels, err = overseg.SLIC(work, overseg.DefaultSLICParams().WithRegions(*regions))
		case "kmeans":
			labels, err = overseg.KMeans(work, overseg.DefaultKMeansParams().WithColors(*colors))
		case "watershed":
			labels, err = overseg.Watershed(work, overseg.DefaultWatershedParams().WithSeeds(*seeds))
		default:
			fmt.Fprintf(os.Stderr, "Unknown method %q\n", *method)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Oversegmentation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Oversegmentation: %s (%d regions)\n", *method, labels.Max()+1)
	}
	printSizeSummary("Initial region size", labels)

	// Merge
	p := scrm.DefaultParams().WithDms(*dms).WithMas(*mas).WithMmu(*mmu)
	fmt.Printf("\nMerging with dms=%d mas=%d mmu=%d\n", p.Dms, p.Mas, p.Mmu)
	var opts []scrm.MergeOption
	if *rename {
		opts = append(opts, scrm.WithStrategy(scrm.MergeRename))
	}
	if *useLab {
		opts = append(opts, scrm.WithWeightFunc(scrm.LabWeight))
	}
	if *progress > 0 {
		opts = append(opts, scrm.WithProgress(*progress, func(merges int) {
			fmt.Printf("  %d merges\n", merges)
		}))
	}
	merged, stats, err := scrm.Segment(work, labels, p, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Merging failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Regions: %d -> %d after %d merges\n", stats.InitialRegions, stats.FinalRegions, stats.Merges)
	fmt.Printf("Queue: %d pops, %d stale, %d size rejects, %d latch rejects\n",
		stats.Pops, stats.Stale, stats.SizeRejects, stats.LatchRejects)
	if stats.LatchedAt >= 0 {
		fmt.Printf("Stop criterion engaged after %d merges\n", stats.LatchedAt)
	} else {
		fmt.Println("Stop criterion never engaged")
	}
	printSizeSummary("Final region size", merged)

	// Outputs
	if *outPath != "" {
		writeLabelsFile(*outPath, merged)
	}
	if *meanPath != "" {
		g, err := scrm.BuildGraph(img, merged, scrm.DefaultBuildParams())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rebuild graph for rendering: %v\n", err)
			os.Exit(1)
		}
		rendered, err := raster.MeanFill(g, merged)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render mean fill: %v\n", err)
			os.Exit(1)
		}
		writePNG(*meanPath, rendered)
	}
	if *palettePath != "" {
		rendered, err := raster.PaletteFill(merged, colorutil.Distinct(stats.FinalRegions))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render palette fill: %v\n", err)
			os.Exit(1)
		}
		writePNG(*palettePath, rendered)
	}
	if *overlayPath != "" {
		rendered, err := raster.Overlay(img, merged, *opacity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render overlay: %v\n", err)
			os.Exit(1)
		}
		writePNG(*overlayPath, rendered)
	}
}

// printSizeSummary prints distribution statistics over region pixel counts.
func printSizeSummary(name string, labels *scrm.Labels) {
	sizes := regionSizes(labels)
	if len(sizes) == 0 {
		return
	}
	sort.Float64s(sizes)
	fmt.Printf("%s: mean %.1f, median %.1f, min %.0f, max %.0f px\n",
		name,
		stat.Mean(sizes, nil),
		stat.Quantile(0.5, stat.Empirical, sizes, nil),
		floats.Min(sizes),
		floats.Max(sizes))
}

// regionSizes counts pixels per label id.
func regionSizes(labels *scrm.Labels) []float64 {
	m := labels.Max()
	if m < 0 {
		return nil
	}
	counts := make([]float64, m+1)
	for _, id := range labels.Pix {
		if id >= 0 {
			counts[id]++
		}
	}
	return counts
}

func writeLabelsFile(path string, labels *scrm.Labels) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := raster.WriteLabels(f, labels); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
