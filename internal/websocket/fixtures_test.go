package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staypulse/internal/config"
	"staypulse/internal/dataprocessing"
	apimw "staypulse/internal/middleware"
	"staypulse/internal/services"
	"staypulse/internal/shared/testutil"
	"staypulse/pkg/contracts/domain"
	"staypulse/pkg/contracts/events"
)

func row(id, group, hood, room string, price, fee float64, minNights int) domain.Listing {
	return domain.Listing{
		ID:                 id,
		Name:               "Listing " + id,
		NeighbourhoodGroup: group,
		Neighbourhood:      hood,
		Country:            "United States",
		RoomType:           room,
		Price:              domain.Float(price),
		ServiceFee:         domain.Float(fee),
		MinimumNights:      minNights,
		Availability365:    domain.Float(100),
		CancellationPolicy: domain.CancellationModerate,
		InstantBookable:    domain.InstantBookableFalse,
	}
}

func newTestListings(t *testing.T) *services.ListingService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	table := dataprocessing.NewTable([]domain.Listing{
		row("1", "Brooklyn", "Williamsburg", "Private room", 80, 5, 2),
		row("2", "Brooklyn", "Bushwick", "Entire home/apt", 150, 10, 3),
		row("3", "Manhattan", "Harlem", "Private room", 120, 10, 1),
	})
	svc, err := services.NewListingService(services.ListingServiceConfig{
		Table:      table,
		Thresholds: config.Default().Thresholds,
		Logger:     logger,
	})
	require.NoError(t, err)
	return svc
}

func newTestClient(t *testing.T, hub *Hub) (*Client, *MockConnection) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	conn := NewMockConnection()
	session := services.NewSession(newTestListings(t), logger)
	client := NewClient(hub, conn, session, apimw.NewValidator(),
		OptionsFromConfig(config.Default().WebSocket, time.Second), "trace-1", logger)
	t.Cleanup(client.Close)
	return client, conn
}

func frame(t *testing.T, id string, typ events.MessageType, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	b, err := json.Marshal(events.ClientMessage{ID: id, Type: typ, Data: raw})
	require.NoError(t, err)
	return b
}

func errorOf(t *testing.T, msg *events.ServerMessage) events.ErrorMessage {
	t.Helper()
	require.NotNil(t, msg)
	require.Equal(t, events.MessageTypeError, msg.Type)
	e, ok := msg.Data.(events.ErrorMessage)
	require.True(t, ok)
	return e
}
