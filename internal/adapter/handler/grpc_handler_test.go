package handler

import (
	"context"
	"math"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rl1809/order-ledger/internal/core/service"
)

func newTestClient(t *testing.T, ledger *service.OrderLedger) *OrderLedgerClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterOrderLedgerServer(srv, NewGRPCHandler(ledger))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewOrderLedgerClient(conn)
}

func TestGRPC_CreateGetCancel(t *testing.T) {
	client := newTestClient(t, service.NewOrderLedger())
	ctx := context.Background()

	req, _ := structpb.NewStruct(map[string]interface{}{"customer": "Alice", "amount": 100.0})
	created, err := client.CreateOrder(ctx, req)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	fields := created.GetFields()
	if fields["id"].GetNumberValue() != 1 {
		t.Errorf("expected id 1, got %v", fields["id"])
	}
	if fields["tax"].GetStringValue() != "13" || fields["total"].GetStringValue() != "113" {
		t.Errorf("expected tax 13 and total 113, got %s and %s",
			fields["tax"].GetStringValue(), fields["total"].GetStringValue())
	}

	if _, err := client.CancelOrder(ctx, wrapperspb.Int64(1)); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	got, err := client.GetOrder(ctx, wrapperspb.Int64(1))
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.GetFields()["status"].GetStringValue() != "cancelled" {
		t.Errorf("expected cancelled, got %v", got.GetFields()["status"])
	}
}

func TestGRPC_StringAmount(t *testing.T) {
	client := newTestClient(t, service.NewOrderLedger())

	req, _ := structpb.NewStruct(map[string]interface{}{"customer": "Bob", "amount": "150.00"})
	created, err := client.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if created.GetFields()["tax"].GetStringValue() != "19.5" {
		t.Errorf("expected tax 19.5, got %v", created.GetFields()["tax"])
	}
}

func TestGRPC_ErrorCodes(t *testing.T) {
	client := newTestClient(t, service.NewOrderLedger())
	ctx := context.Background()

	blank, _ := structpb.NewStruct(map[string]interface{}{"customer": "   ", "amount": 10.0})
	_, err := client.CreateOrder(ctx, blank)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("blank customer: expected InvalidArgument, got %v", err)
	}

	badAmount, _ := structpb.NewStruct(map[string]interface{}{"customer": "Alice", "amount": true})
	_, err = client.CreateOrder(ctx, badAmount)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("bool amount: expected InvalidArgument, got %v", err)
	}

	_, err = client.CancelOrder(ctx, wrapperspb.Int64(0))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("zero id: expected InvalidArgument, got %v", err)
	}

	_, err = client.CancelOrder(ctx, wrapperspb.Int64(7))
	if status.Code(err) != codes.NotFound {
		t.Errorf("unknown id: expected NotFound, got %v", err)
	}

	ok, _ := structpb.NewStruct(map[string]interface{}{"customer": "Alice", "amount": 10.0})
	client.CreateOrder(ctx, ok)
	client.CancelOrder(ctx, wrapperspb.Int64(1))
	_, err = client.CancelOrder(ctx, wrapperspb.Int64(1))
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("double cancel: expected FailedPrecondition, got %v", err)
	}
}

func TestGRPC_IsHighValue(t *testing.T) {
	client := newTestClient(t, service.NewOrderLedger())
	ctx := context.Background()

	resp, err := client.IsHighValue(ctx, wrapperspb.String("999.99"))
	if err != nil || resp.GetValue() {
		t.Errorf("999.99: expected false, got %v (%v)", resp.GetValue(), err)
	}
	resp, err = client.IsHighValue(ctx, wrapperspb.String("1000.0"))
	if err != nil || !resp.GetValue() {
		t.Errorf("1000.0: expected true, got %v (%v)", resp.GetValue(), err)
	}

	_, err = client.IsHighValue(ctx, wrapperspb.String("abc"))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestGRPC_NonFiniteAmountIsRejected(t *testing.T) {
	ledger := service.NewOrderLedger()
	client := newTestClient(t, ledger)

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		req := &structpb.Struct{Fields: map[string]*structpb.Value{
			"customer": structpb.NewStringValue("Alice"),
			"amount":   structpb.NewNumberValue(f),
		}}
		_, err := client.CreateOrder(context.Background(), req)
		if status.Code(err) != codes.InvalidArgument {
			t.Errorf("amount %v: expected InvalidArgument, got %v", f, err)
		}
	}

	if len(ledger.ListOrders()) != 0 {
		t.Error("rejected amounts must not create orders")
	}

	// The server is still serving after the rejected requests
	ok, _ := structpb.NewStruct(map[string]interface{}{"customer": "Bob", "amount": 1.0})
	if _, err := client.CreateOrder(context.Background(), ok); err != nil {
		t.Errorf("expected server to keep serving, got %v", err)
	}
}
