package pdfwrite

import "bytes"

// encodeUpPredictor applies the PNG "Up" row filter ahead of
// FlateDecode compression: each row is prefixed with filter-type byte
// 2 and diffed against the previous row, the same per-row convention
// pdfparse's predictor decoder (Predictor >= 10) expects on read.
// Predictor 12 names this specific, always-Up variant: unlike a real
// PNG encoder, the cross-reference stream's rows are fixed-width
// binary records with no per-row choice of filter to make.
func encodeUpPredictor(rows [][]byte) []byte {
	var out bytes.Buffer
	prev := make([]byte, len(rows[0]))
	for _, row := range rows {
		out.WriteByte(2)
		for i, b := range row {
			out.WriteByte(b - prev[i])
		}
		prev = row
	}
	return out.Bytes()
}
