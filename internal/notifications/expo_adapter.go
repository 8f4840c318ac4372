package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// expoBatchLimit is the most messages Expo accepts per request.
const expoBatchLimit = 100

type ExpoAdapter struct {
	client *exponent.Client
}

func NewExpoAdapter(accessToken string) *ExpoAdapter {
	if accessToken == "" {
		return &ExpoAdapter{client: exponent.NewClient()}
	}
	return &ExpoAdapter{client: exponent.NewClient(exponent.WithAccessToken(accessToken))}
}

func (a *ExpoAdapter) Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	var out []*exponent.MessageResponse
	for start := 0; start < len(msgs); start += expoBatchLimit {
		end := min(start+expoBatchLimit, len(msgs))
		res, err := a.client.Publish(ctx, msgs[start:end])
		if err != nil {
			return out, err
		}
		out = append(out, res...)
	}
	return out, nil
}
