package pdfpage

// Standard page sizes in PDF points (1/72 inch), portrait orientation,
// suitable for a fresh leaf's /MediaBox [0 0 width height].
var (
	SizeA4     = [2]float64{595.28, 841.89}
	SizeLetter = [2]float64{612, 792}
	SizeLegal  = [2]float64{612, 1008}
	SizeA3     = [2]float64{841.89, 1190.55}
	SizeA5     = [2]float64{419.53, 595.28}
	SizeA7     = [2]float64{209.76, 297.64}
)
