package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// LSTM is the fallback OCR engine. It shells out to the tesseract CLI in
// LSTM-only mode (--oem 1) with full automatic page segmentation, which is
// slower than the in-process client but often recovers more text from
// degraded scans. Output is requested as TSV so per-word confidences can
// be read back.
type LSTM struct {
	Languages []string
}

// NewLSTM returns an LSTM fallback engine for the given language tags.
func NewLSTM(languages ...string) *LSTM {
	return &LSTM{Languages: languages}
}

func (l *LSTM) Name() string { return "tesseract-lstm" }

func (l *LSTM) Recognize(ctx context.Context, image []byte) Result {
	tmp, err := os.CreateTemp("", "docparse-ocr-*.png")
	if err != nil {
		return failed(l.Name(), fmt.Sprintf("tesseract-lstm temp file: %v", err))
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return failed(l.Name(), fmt.Sprintf("tesseract-lstm write image: %v", err))
	}
	tmp.Close()

	args := []string{tmpPath, "stdout", "--oem", "1", "--psm", "3"}
	if len(l.Languages) > 0 {
		args = append(args, "-l", strings.Join(l.Languages, "+"))
	}
	args = append(args, "tsv")

	out, err := exec.CommandContext(ctx, "tesseract", args...).Output()
	if err != nil {
		return failed(l.Name(), fmt.Sprintf("tesseract-lstm failed: %v", err))
	}

	text, conf := parseTSV(out)
	res := Result{
		Text:       text,
		Confidence: conf,
		Source:     l.Name(),
	}
	if len(l.Languages) > 0 {
		res.Language = l.Languages[0]
	}
	if res.Confidence < LowConfidenceThreshold {
		res.Warnings = append(res.Warnings, LowConfidenceWarning)
	}
	return res
}

// parseTSV reads tesseract's TSV output: one row per recognized item with
// the confidence in column 11 and the text in column 12. Rows with
// non-positive confidence carry layout structure, not words.
func parseTSV(out []byte) (string, float64) {
	var words []string
	var sum float64
	var n int

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(fields[10], 64)
		if err != nil || conf <= 0 {
			continue
		}
		word := strings.TrimSpace(fields[11])
		if word == "" {
			continue
		}
		words = append(words, word)
		sum += conf
		n++
	}
	if n == 0 {
		return "", 0
	}
	return strings.Join(words, " "), sum / float64(n)
}
