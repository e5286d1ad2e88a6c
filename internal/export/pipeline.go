package export

import (
	"context"
	"fmt"
	"time"

	"github.com/gogotex/blogdraft/pkg/logger"
	"github.com/gogotex/blogdraft/pkg/metrics"
)

// Encoder converts a Source into the bytes of one target format.
type Encoder interface {
	Encode(src Source) ([]byte, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(src Source) ([]byte, error)

func (f EncoderFunc) Encode(src Source) ([]byte, error) { return f(src) }

// BlobSaver is the file-save collaborator: it stores a finished artifact
// under a user-facing filename and returns the name actually used. Savers
// never replace an earlier file with the same name.
type BlobSaver interface {
	SaveBlob(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

// Artifact is a finished export ready for download.
type Artifact struct {
	Format      Format
	Filename    string
	ContentType string
	Data        []byte
}

// Pipeline dispatches a Source to the encoder of the requested format.
type Pipeline struct {
	structured Encoder
	markup     Encoder
	flow       Encoder
	fixed      Encoder
}

// Option replaces one of the default encoders.
type Option func(*Pipeline)

func WithEncoder(f Format, enc Encoder) Option {
	return func(p *Pipeline) {
		switch f {
		case StructuredData:
			p.structured = enc
		case Markup:
			p.markup = enc
		case FlowDocument:
			p.flow = enc
		case FixedLayout:
			p.fixed = enc
		}
	}
}

// WithPDFFont makes the fixed layout encoder draw text with the TrueType
// font at path. An empty path keeps the bundled faces.
func WithPDFFont(path string) Option {
	return func(p *Pipeline) {
		if path == "" {
			return
		}
		enc := NewFixedLayoutEncoder()
		enc.FontFile = path
		p.fixed = enc
	}
}

// NewPipeline returns a pipeline with the built-in encoders.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		structured: StructuredDataEncoder{},
		markup:     MarkupEncoder{},
		flow:       FlowDocumentEncoder{},
		fixed:      NewFixedLayoutEncoder(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) encoder(f Format) Encoder {
	switch f {
	case StructuredData:
		return p.structured
	case Markup:
		return p.markup
	case FlowDocument:
		return p.flow
	case FixedLayout:
		return p.fixed
	}
	return nil
}

// Export encodes src in format f. The source is never modified; on any
// failure no artifact is returned.
func (p *Pipeline) Export(src Source, f Format) (*Artifact, error) {
	if !f.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	enc := p.encoder(f)
	if enc == nil {
		metrics.Exports.WithLabelValues(f.String(), "error").Inc()
		return nil, fmt.Errorf("%w: no %s encoder configured", ErrConversion, f)
	}

	start := time.Now()
	data, err := safeEncode(enc, src)
	metrics.ExportDuration.WithLabelValues(f.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Exports.WithLabelValues(f.String(), "error").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrConversion, f, err)
	}
	metrics.Exports.WithLabelValues(f.String(), "ok").Inc()
	return &Artifact{
		Format:      f,
		Filename:    Filename(src.Title, f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

// Deliver exports src and hands the finished artifact to saver. Nothing is
// saved when encoding fails. The returned artifact carries the stored name.
func (p *Pipeline) Deliver(ctx context.Context, src Source, f Format, saver BlobSaver) (*Artifact, error) {
	a, err := p.Export(src, f)
	if err != nil {
		return nil, err
	}
	stored, err := saver.SaveBlob(ctx, a.Data, a.Filename, a.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDelivery, a.Filename, err)
	}
	if stored != "" {
		a.Filename = stored
	}
	return a, nil
}

// DeliverAsync runs Deliver on its own goroutine with a detached context.
// There is no cancellation or progress; concurrent calls produce
// independent files. The buffered result channel may be ignored.
func (p *Pipeline) DeliverAsync(src Source, f Format, saver BlobSaver) <-chan error {
	done := make(chan error, 1)
	go func() {
		a, err := p.Deliver(context.Background(), src, f, saver)
		if err != nil {
			logger.Errorf("export %s %q failed: %v", f, src.Title, err)
		} else {
			logger.Infof("export %s saved as %s (%d bytes)", f, a.Filename, len(a.Data))
		}
		done <- err
		close(done)
	}()
	return done
}

// safeEncode turns an encoder panic into an error.
func safeEncode(enc Encoder, src Source) (data []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			data, err = nil, fmt.Errorf("encoder panic: %v", rec)
		}
	}()
	return enc.Encode(src)
}
