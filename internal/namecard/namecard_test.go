package namecard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/vibe-registration/internal/entity"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/qr"
)

type MockQRCoder struct {
	mock.Mock
}

func (m *MockQRCoder) Code(ctx context.Context, data string, size int) (qr.Image, error) {
	args := m.Called(ctx, data, size)
	return args.Get(0).(qr.Image), args.Error(1)
}

func testEvent() entity.Event {
	return entity.Event{Start: time.Date(2025, 11, 6, 18, 30, 0, 0, time.UTC)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderWithLinkedInQR(t *testing.T) {
	coder := new(MockQRCoder)
	coder.On("Code", mock.Anything, "https://linkedin.com/in/janedoe", 180).
		Return(qr.Image{Data: []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 21 21"><path d="M0 0h7"/></svg>`), ContentType: "image/svg+xml"}, nil)

	out, err := NewGenerator(coder, testEvent(), discardLogger()).Render(context.Background(), Card{
		Name:            "Jane Doe",
		Email:           "jane@example.com",
		LinkedInProfile: "https://linkedin.com/in/janedoe",
	})
	require.NoError(t, err)

	svg := string(out)
	assert.Contains(t, svg, `width="800" height="500"`)
	assert.Contains(t, svg, "VIBE CODING WORKSHOP - 6 Nov 2025")
	assert.Contains(t, svg, ">JANE DOE</text>")
	assert.Contains(t, svg, "jane@example.com")
	assert.Contains(t, svg, `<path d="M0 0h7"/>`)
	assert.NotContains(t, svg, "<?xml")
	coder.AssertExpectations(t)
}

func TestRenderFallsBackToPlaceholder(t *testing.T) {
	coder := new(MockQRCoder)
	coder.On("Code", mock.Anything, "mailto:jane@example.com", 180).Return(qr.Image{}, errors.New("timeout"))

	out, err := NewGenerator(coder, testEvent(), discardLogger()).Render(context.Background(), Card{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.Contains(t, string(out), ">QR</text>")
}

func TestRenderEscapesName(t *testing.T) {
	coder := new(MockQRCoder)
	coder.On("Code", mock.Anything, mock.Anything, mock.Anything).Return(qr.Image{}, errors.New("down"))

	out, err := NewGenerator(coder, testEvent(), discardLogger()).Render(context.Background(), Card{Name: "<script>x</script>", Email: "a@b.co"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<SCRIPT>")
	assert.Contains(t, string(out), "&lt;SCRIPT&gt;")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Jane_Doe_namecard.svg", Filename("Jane Doe"))
	assert.Equal(t, "Jos___namecard.svg", Filename("José!"))
}
