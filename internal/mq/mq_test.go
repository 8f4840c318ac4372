package mq

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type recordedAck struct {
	acked, nacked, requeued bool
}

func (r *recordedAck) Ack(bool) error { r.acked = true; return nil }
func (r *recordedAck) Nack(_ bool, requeue bool) error {
	r.nacked, r.requeued = true, requeue
	return nil
}

func TestSettle(t *testing.T) {
	logger := zap.NewNop().Sugar()
	tests := []struct {
		name        string
		redelivered bool
		err         error
		want        recordedAck
	}{
		{"success", false, nil, recordedAck{acked: true}},
		{"transient", false, errors.New("smtp timeout"), recordedAck{nacked: true, requeued: true}},
		{"transient twice", true, errors.New("smtp timeout"), recordedAck{nacked: true}},
		{"permanent", false, Permanent(errors.New("bad json")), recordedAck{nacked: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got recordedAck
			d := amqp.Delivery{RoutingKey: "booking.created", Redelivered: tt.redelivered}
			settleWith(context.Background(), logger, &got, d, func(context.Context, amqp.Delivery) error { return tt.err })
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type event struct {
		OrderID string `json:"order_id"`
	}
	v, err := DecodeJSON[event](amqp.Delivery{Body: []byte(`{"order_id":"BOOKING-1-A"}`)})
	if err != nil || v.OrderID != "BOOKING-1-A" {
		t.Fatalf("unexpected decode %+v, %v", v, err)
	}
	if _, err := DecodeJSON[event](amqp.Delivery{Body: []byte(`{`)}); !IsPermanent(err) {
		t.Fatalf("expected a permanent error, got %v", err)
	}
	if Permanent(nil) != nil {
		t.Fatalf("Permanent(nil) should be nil")
	}
}
