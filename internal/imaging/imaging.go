package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/nao1215/asinbot/internal/netclient"
)

const (
	// DefaultTimeout bounds one image download.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxSize is the largest image body accepted.
	DefaultMaxSize = 10 * 1024 * 1024

	// DefaultQuality is the JPEG quality of the re-encoded image.
	DefaultQuality = 95

	// Filename is the name the image is uploaded under.
	Filename = "product.jpg"

	// stampSize is the edge length of the corner patch.
	stampSize = 2
)

// stampColor is the near-white colour painted into the bottom-right corner.
var stampColor = color.NRGBA{R: 254, G: 254, B: 254, A: 255}

// Photo is a processed image ready for upload.
type Photo struct {
	// Filename is the upload file name.
	Filename string

	// Data holds the JPEG bytes.
	Data []byte

	// Width and Height are the dimensions after orientation.
	Width  int
	Height int
}

// Processor downloads and re-encodes product images.
type Processor struct {
	clients *netclient.Factory
	timeout time.Duration
	maxSize int64
	quality int
	logger  *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithTimeout sets the download timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) {
		p.timeout = d
	}
}

// WithMaxSize sets the largest accepted image body in bytes.
func WithMaxSize(n int64) Option {
	return func(p *Processor) {
		p.maxSize = n
	}
}

// WithQuality sets the JPEG quality, 1 to 100.
func WithQuality(q int) Option {
	return func(p *Processor) {
		if q >= 1 && q <= 100 {
			p.quality = q
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor that downloads through clients.
func NewProcessor(clients *netclient.Factory, opts ...Option) *Processor {
	p := &Processor{
		clients: clients,
		timeout: DefaultTimeout,
		maxSize: DefaultMaxSize,
		quality: DefaultQuality,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch downloads imageURL and returns the processed photo.
func (p *Processor) Fetch(ctx context.Context, imageURL string) (*Photo, error) {
	if !strings.HasPrefix(imageURL, "http") {
		return nil, ErrNotHTTPURL
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client := p.clients.New(p.timeout)
	defer client.CloseIdleConnections()

	data, err := p.download(ctx, client, imageURL)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("image downloaded", "url", imageURL, "bytes", len(data))
	return p.Process(data)
}

func (p *Processor) download(ctx context.Context, client *http.Client, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, ErrHTMLInsteadOfImage
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %d: %w", imageURL, resp.StatusCode, ErrUnexpectedStatus)
	}
	if resp.ContentLength > p.maxSize {
		return nil, fmt.Errorf("%d bytes: %w", resp.ContentLength, ErrImageTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > p.maxSize {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

// Process decodes data, turns it upright, stamps the corner and encodes JPEG.
func (p *Processor) Process(data []byte) (*Photo, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img := Orient(src, ReadOrientation(data))
	Stamp(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return &Photo{
		Filename: Filename,
		Data:     buf.Bytes(),
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// Stamp paints the bottom-right stampSize x stampSize pixels near-white.
func Stamp(img *image.NRGBA) {
	b := img.Bounds()
	for y := max(b.Max.Y-stampSize, b.Min.Y); y < b.Max.Y; y++ {
		for x := max(b.Max.X-stampSize, b.Min.X); x < b.Max.X; x++ {
			img.SetNRGBA(x, y, stampColor)
		}
	}
}
