package artifacts

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"guestregistration/internal/domain"
)

const defaultQRSize = 256

type qrRenderer struct {
	size int
}

// NewQRRenderer returns a renderer producing size x size PNG QR codes that
// encode the check-in token verbatim.
func NewQRRenderer(size int) domain.CheckInArtifactRenderer {
	if size <= 0 {
		size = defaultQRSize
	}
	return &qrRenderer{size: size}
}

func (r *qrRenderer) Render(token string) ([]byte, error) {
	if token == "" {
		return nil, fmt.Errorf("check-in token is empty")
	}
	png, err := qrcode.Encode(token, qrcode.Medium, r.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
