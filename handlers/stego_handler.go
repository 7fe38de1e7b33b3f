// Package handlers wires the HTTP surface to the codec packages: it parses
// multipart requests into stegoptions.Options, runs capacity.Validate as a
// pre-flight check, drives framecodec/fragment/container, and renders the
// result back as a streamed file plus X-Stego-* response headers.
package handlers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stegocodec/bitops"
	"stegocodec/capacity"
	"stegocodec/container"
	"stegocodec/fragment"
	"stegocodec/framecodec"
	"stegocodec/models"
	"stegocodec/quality"
	"stegocodec/stegoptions"
)

// StegoHandler holds no state of its own; every operation is a pure
// function of the request, so one instance is shared across all requests.
type StegoHandler struct{}

func NewStegoHandler() *StegoHandler {
	return &StegoHandler{}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "stegocodec API is running",
	})
}

// Capacity reports whether the uploaded cover file, of the given container
// kind, can hold a payload of the declared size under the given options,
// without performing an encode.
func (h *StegoHandler) Capacity(c *gin.Context) {
	requestID := uuid.NewString()
	c.Header("X-Stego-Request-Id", requestID)

	if err := c.Request.ParseMultipartForm(maxUploadBytes()); err != nil {
		respondError(c, requestID, http.StatusBadRequest, "failed to parse form: %v", err)
		return
	}

	opts, payloadLen, err := parseOptions(c, "payload_size")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "%v", err)
		return
	}

	coverFile, _, err := c.Request.FormFile("cover_file")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "cover file is required")
		return
	}
	defer coverFile.Close()

	coverData, err := io.ReadAll(coverFile)
	if err != nil {
		respondError(c, requestID, http.StatusInternalServerError, "failed to read cover file: %v", err)
		return
	}

	kind, err := parseContainerKind(c.PostForm("container"))
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "%v", err)
		return
	}
	adaptedOpts, err := container.Adapt(kind, coverData, opts)
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "container adapter failed: %v", err)
		return
	}

	breakdown := capacity.Compute(adaptedOpts, payloadLen, int64(len(coverData)))

	c.JSON(http.StatusOK, models.EncodeResponse{
		Success:   breakdown.Sufficient(),
		Message:   capacityMessage(breakdown),
		RequestID: requestID,
		Capacity:  toBreakdownDTO(breakdown),
	})
}

// Insert embeds the uploaded secret file into the uploaded cover file and
// streams the stego file back.
func (h *StegoHandler) Insert(c *gin.Context) {
	requestID := uuid.NewString()
	c.Header("X-Stego-Request-Id", requestID)

	if err := c.Request.ParseMultipartForm(maxUploadBytes()); err != nil {
		respondError(c, requestID, http.StatusBadRequest, "failed to parse form: %v", err)
		return
	}

	opts, _, err := parseOptions(c, "")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "%v", err)
		return
	}

	coverFile, coverHeader, err := c.Request.FormFile("cover_file")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "cover file is required")
		return
	}
	defer coverFile.Close()

	secretFile, _, err := c.Request.FormFile("secret_file")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "secret file is required")
		return
	}
	defer secretFile.Close()

	coverData, err := io.ReadAll(coverFile)
	if err != nil {
		respondError(c, requestID, http.StatusInternalServerError, "failed to read cover file: %v", err)
		return
	}
	secretData, err := io.ReadAll(secretFile)
	if err != nil {
		respondError(c, requestID, http.StatusInternalServerError, "failed to read secret file: %v", err)
		return
	}

	kind, err := parseContainerKind(c.PostForm("container"))
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "%v", err)
		return
	}
	adaptedOpts, err := container.Adapt(kind, coverData, opts)
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "container adapter failed: %v", err)
		return
	}

	var dest bytes.Buffer
	if _, err := framecodec.Encode(bytes.NewReader(coverData), int64(len(coverData)), bytes.NewReader(secretData), int64(len(secretData)), &dest, adaptedOpts); err != nil {
		breakdown, capErr := capacity.Validate(adaptedOpts, int64(len(secretData)), int64(len(coverData)))
		if capErr != nil {
			c.JSON(http.StatusBadRequest, models.EncodeResponse{
				Success:   false,
				Message:   capacityMessage(breakdown),
				RequestID: requestID,
				Capacity:  toBreakdownDTO(breakdown),
			})
			return
		}
		respondError(c, requestID, http.StatusInternalServerError, "encode failed: %v", err)
		return
	}

	outputFilename := stegoFilename(coverHeader.Filename)

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename))
	c.Header("X-Stego-Container", kind.String())
	if kind == container.WAV {
		if report, err := quality.CompareWAV(coverData, dest.Bytes()); err == nil {
			c.Header("X-Stego-Psnr", strconv.FormatFloat(report.PSNRDecibels, 'f', 2, 64))
		}
	}
	c.Data(http.StatusOK, "application/octet-stream", dest.Bytes())
}

// Extract recovers the hidden payload from the uploaded stego file.
func (h *StegoHandler) Extract(c *gin.Context) {
	requestID := uuid.NewString()
	c.Header("X-Stego-Request-Id", requestID)

	if err := c.Request.ParseMultipartForm(maxUploadBytes()); err != nil {
		respondError(c, requestID, http.StatusBadRequest, "failed to parse form: %v", err)
		return
	}

	opts, _, err := parseOptions(c, "")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "%v", err)
		return
	}

	stegoFile, _, err := c.Request.FormFile("stego_file")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "stego file is required")
		return
	}
	defer stegoFile.Close()

	stegoData, err := io.ReadAll(stegoFile)
	if err != nil {
		respondError(c, requestID, http.StatusInternalServerError, "failed to read stego file: %v", err)
		return
	}

	kind, err := parseContainerKind(c.PostForm("container"))
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "%v", err)
		return
	}
	adaptedOpts, err := container.Adapt(kind, stegoData, opts)
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "container adapter failed: %v", err)
		return
	}

	var dest bytes.Buffer
	result, err := framecodec.Decode(bytes.NewReader(stegoData), &dest, adaptedOpts)
	if err != nil {
		respondError(c, requestID, http.StatusInternalServerError, "decode failed: %v", err)
		return
	}
	if result == framecodec.InvalidPassword {
		c.JSON(http.StatusUnauthorized, models.DecodeResponse{
			Success:         false,
			Message:         "password did not match",
			RequestID:       requestID,
			InvalidPassword: true,
		})
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", "attachment; filename=secret.bin")
	c.Data(http.StatusOK, "application/octet-stream", dest.Bytes())
}

// InsertFragmented splits one secret file across several uploaded cover
// files, in the order the client names them (repeated "cover_file" fields)
// paired with repeated "data_amount" fields. It streams back a multipart
// response with one stego file per cover, in the same order.
func (h *StegoHandler) InsertFragmented(c *gin.Context) {
	requestID := uuid.NewString()
	c.Header("X-Stego-Request-Id", requestID)

	if err := c.Request.ParseMultipartForm(maxUploadBytes()); err != nil {
		respondError(c, requestID, http.StatusBadRequest, "failed to parse form: %v", err)
		return
	}

	opts, _, err := parseOptions(c, "")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "%v", err)
		return
	}

	secretFile, _, err := c.Request.FormFile("secret_file")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "secret file is required")
		return
	}
	defer secretFile.Close()
	secretData, err := io.ReadAll(secretFile)
	if err != nil {
		respondError(c, requestID, http.StatusInternalServerError, "failed to read secret file: %v", err)
		return
	}

	coverHeaders := c.Request.MultipartForm.File["cover_file"]
	amounts := c.Request.MultipartForm.Value["data_amount"]
	if len(coverHeaders) == 0 || len(coverHeaders) != len(amounts) {
		respondError(c, requestID, http.StatusBadRequest, "cover_file and data_amount must repeat the same number of times")
		return
	}

	entries := make([]fragment.EncodeEntry, 0, len(coverHeaders))
	destinations := make([]*bytes.Buffer, 0, len(coverHeaders))
	for i, fh := range coverHeaders {
		amount, err := strconv.ParseInt(amounts[i], 10, 64)
		if err != nil {
			respondError(c, requestID, http.StatusBadRequest, "data_amount[%d] must be an integer", i)
			return
		}

		f, err := fh.Open()
		if err != nil {
			respondError(c, requestID, http.StatusInternalServerError, "failed to open cover_file[%d]: %v", i, err)
			return
		}
		defer f.Close()
		coverData, err := io.ReadAll(f)
		if err != nil {
			respondError(c, requestID, http.StatusInternalServerError, "failed to read cover_file[%d]: %v", i, err)
			return
		}

		dest := &bytes.Buffer{}
		destinations = append(destinations, dest)
		entries = append(entries, fragment.EncodeEntry{
			Cover:              bytes.NewReader(coverData),
			CoverSize:          int64(len(coverData)),
			Destination:        dest,
			DataAmountToEncode: amount,
			Options:            opts,
		})
	}

	if _, err := fragment.EncodeAll(entries, bytes.NewReader(secretData), int64(len(secretData))); err != nil {
		respondError(c, requestID, http.StatusBadRequest, "fragmented encode failed: %v", err)
		return
	}

	c.Header("X-Stego-Fragment-Count", strconv.Itoa(len(destinations)))
	writer := multipart.NewWriter(c.Writer)
	c.Header("Content-Type", "multipart/mixed; boundary="+writer.Boundary())
	for i, dest := range destinations {
		part, err := writer.CreatePart(map[string][]string{
			"Content-Disposition": {fmt.Sprintf(`attachment; name="part%d"; filename="%s"`, i, stegoFilename(coverHeaders[i].Filename))},
		})
		if err != nil {
			respondError(c, requestID, http.StatusInternalServerError, "failed to write multipart response: %v", err)
			return
		}
		if _, err := part.Write(dest.Bytes()); err != nil {
			respondError(c, requestID, http.StatusInternalServerError, "failed to write multipart response: %v", err)
			return
		}
	}
	writer.Close()
}

// ExtractFragmented decodes an ordered list of stego files and concatenates
// their recovered payload bytes into a single response.
func (h *StegoHandler) ExtractFragmented(c *gin.Context) {
	requestID := uuid.NewString()
	c.Header("X-Stego-Request-Id", requestID)

	if err := c.Request.ParseMultipartForm(maxUploadBytes()); err != nil {
		respondError(c, requestID, http.StatusBadRequest, "failed to parse form: %v", err)
		return
	}

	opts, _, err := parseOptions(c, "")
	if err != nil {
		respondError(c, requestID, http.StatusBadRequest, "%v", err)
		return
	}

	stegoHeaders := c.Request.MultipartForm.File["stego_file"]
	if len(stegoHeaders) == 0 {
		respondError(c, requestID, http.StatusBadRequest, "at least one stego_file is required")
		return
	}

	entries := make([]fragment.DecodeEntry, 0, len(stegoHeaders))
	for i, fh := range stegoHeaders {
		f, err := fh.Open()
		if err != nil {
			respondError(c, requestID, http.StatusInternalServerError, "failed to open stego_file[%d]: %v", i, err)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			respondError(c, requestID, http.StatusInternalServerError, "failed to read stego_file[%d]: %v", i, err)
			return
		}
		entries = append(entries, fragment.DecodeEntry{Encoded: bytes.NewReader(data), Options: opts})
	}

	var dest bytes.Buffer
	result, err := fragment.DecodeAll(entries, &dest)
	if err != nil {
		respondError(c, requestID, http.StatusInternalServerError, "fragmented decode failed: %v", err)
		return
	}
	if result == framecodec.InvalidPassword {
		c.JSON(http.StatusUnauthorized, models.DecodeResponse{
			Success:         false,
			Message:         "password did not match",
			RequestID:       requestID,
			InvalidPassword: true,
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=secret.bin")
	c.Data(http.StatusOK, "application/octet-stream", dest.Bytes())
}

func parseOptions(c *gin.Context, payloadSizeField string) (stegoptions.Options, int64, error) {
	initialOffset, _ := strconv.Atoi(c.DefaultPostForm("initial_offset", "0"))
	byteSkipPerBlock, _ := strconv.Atoi(c.DefaultPostForm("byte_skip_per_block", "0"))
	dataBlockSize, err := strconv.Atoi(c.DefaultPostForm("data_block_size", "1"))
	if err != nil {
		return stegoptions.Options{}, 0, fmt.Errorf("data_block_size must be an integer")
	}
	hiddenBitPosition, err := strconv.Atoi(c.DefaultPostForm("hidden_bit_position", "0"))
	if err != nil {
		return stegoptions.Options{}, 0, fmt.Errorf("hidden_bit_position must be an integer")
	}
	endianChangeFrequency, _ := strconv.Atoi(c.DefaultPostForm("endian_change_frequency", "0"))

	endian := bitops.BigEndian
	if strings.EqualFold(c.DefaultPostForm("starting_endian", "big"), "little") {
		endian = bitops.LittleEndian
	}

	var password []byte
	if pw := c.PostForm("password"); pw != "" {
		password = []byte(pw)
	}

	opts, err := stegoptions.New(initialOffset, byteSkipPerBlock, dataBlockSize, hiddenBitPosition, endian, endianChangeFrequency, password)
	if err != nil {
		return stegoptions.Options{}, 0, err
	}

	var payloadLen int64
	if payloadSizeField != "" {
		payloadLen, _ = strconv.ParseInt(c.DefaultPostForm(payloadSizeField, "0"), 10, 64)
	}

	return opts, payloadLen, nil
}

func parseContainerKind(value string) (container.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "raw":
		return container.Raw, nil
	case "wav":
		return container.WAV, nil
	case "mp3":
		return container.MP3, nil
	default:
		return container.Raw, fmt.Errorf("unknown container kind %q", value)
	}
}

func toBreakdownDTO(b capacity.Breakdown) *models.CapacityBreakdown {
	return &models.CapacityBreakdown{
		NumberOfDataBlocks: b.NumberOfDataBlocks,
		TotalByteSkip:      b.TotalByteSkip,
		PasswordSize:       b.PasswordSize,
		TotalBytesRequired: b.TotalBytesRequired,
		CoverFileSize:      b.CoverFileSize,
		Sufficient:         b.Sufficient(),
	}
}

func capacityMessage(b capacity.Breakdown) string {
	if b.Sufficient() {
		return "cover file has sufficient capacity"
	}
	return fmt.Sprintf("cover file has %d bytes, %d required", b.CoverFileSize, b.TotalBytesRequired)
}

func stegoFilename(original string) string {
	if dot := strings.LastIndex(original, "."); dot > 0 {
		return original[:dot] + "_stego" + original[dot:]
	}
	return original + "_stego"
}

func respondError(c *gin.Context, requestID string, status int, format string, args ...any) {
	c.JSON(status, models.EncodeResponse{
		Success:   false,
		Message:   fmt.Sprintf(format, args...),
		RequestID: requestID,
	})
}

// maxUploadBytes reads STEGO_MAX_UPLOAD_MB, defaulting to 32 MB, matching
// the teacher's hardcoded ParseMultipartForm limit but made configurable.
func maxUploadBytes() int64 {
	const defaultMB = 32
	mb := defaultMB
	if v := os.Getenv("STEGO_MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			mb = n
		}
	}
	return int64(mb) << 20
}
