package notifications

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(ctx context.Context, toEmail, subject, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, toEmail+"|"+subject)
	return nil
}

func setupNotificationsTest(t *testing.T) (*Service, *gorm.DB, *recordingSender) {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	sender := &recordingSender{}
	return &Service{DB: db, Sender: sender}, db, sender
}

func strPtr(s string) *string { return &s }

func TestNotifyAndListForUser(t *testing.T) {
	svc, db, _ := setupNotificationsTest(t)
	ctx := context.Background()
	tenantID, userID, otherID := uuid.New(), uuid.New(), uuid.New()

	_, err := svc.Notify(db,
		Message{TenantID: tenantID, UserID: &userID, Kind: domain.NotifyApprovalDecided, Title: "direct"},
		Message{TenantID: tenantID, Role: strPtr("MANAGER"), Kind: domain.NotifyApprovalRequested, Title: "role"},
		Message{TenantID: tenantID, UserID: &otherID, Kind: domain.NotifyApprovalDecided, Title: "someone else"},
		Message{TenantID: uuid.New(), Role: strPtr("MANAGER"), Kind: domain.NotifyApprovalRequested, Title: "other tenant"},
	)
	require.NoError(t, err)

	list, err := svc.ListForUser(ctx, tenantID, userID, "MANAGER", false)
	require.NoError(t, err)
	titles := []string{}
	for _, n := range list {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(t, []string{"direct", "role"}, titles)

	list, err = svc.ListForUser(ctx, tenantID, userID, "VIEWER", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "direct", list[0].Title)
}

func TestMarkRead(t *testing.T) {
	svc, db, _ := setupNotificationsTest(t)
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	rows, err := svc.Notify(db, Message{TenantID: tenantID, UserID: &userID, Kind: domain.NotifyPackFinalized, Title: "done"})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, tenantID, uuid.New(), "VIEWER", rows[0].NotificationID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	n, err := svc.MarkRead(ctx, tenantID, userID, "VIEWER", rows[0].NotificationID)
	require.NoError(t, err)
	require.NotNil(t, n.ReadAt)

	unread, err := svc.ListForUser(ctx, tenantID, userID, "VIEWER", true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestDeliver_EmailsOnlyUserTargeted(t *testing.T) {
	svc, db, sender := setupNotificationsTest(t)
	tenantID := uuid.New()
	alice := domain.User{TenantID: tenantID, Fullname: "Alice", Email: "alice@bidops.test", PasswordHash: "x", Role: "MANAGER"}
	bob := domain.User{TenantID: tenantID, Fullname: "Bob", Email: "bob@bidops.test", PasswordHash: "x", Role: "ADMIN"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	rows, err := svc.Notify(db,
		Message{TenantID: tenantID, Role: strPtr("ADMIN"), Kind: domain.NotifyApprovalRequested, Title: "Executive approval requested"},
		Message{TenantID: tenantID, UserID: &alice.UserID, Kind: domain.NotifyApprovalDecided, Title: "Legal approved"},
		Message{TenantID: uuid.New(), UserID: &bob.UserID, Kind: domain.NotifyApprovalDecided, Title: "Wrong tenant"},
	)
	require.NoError(t, err)

	svc.Deliver(context.Background(), rows)
	assert.Equal(t, []string{"alice@bidops.test|Legal approved"}, sender.sent)

	// Role-targeted notes remain visible in-app.
	inbox, err := svc.ListForUser(context.Background(), tenantID, bob.UserID, "ADMIN", false)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Executive approval requested", inbox[0].Title)
}

func TestBrevoClient_Send(t *testing.T) {
	var got BrevoSendRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &BrevoClient{APIKey: "k", Endpoint: srv.URL}
	require.NoError(t, c.Send(context.Background(), "a@b.qa", "Hello", "<p>x</p>"))
	assert.Equal(t, "k", apiKey)
	assert.Equal(t, "a@b.qa", got.To[0].Email)
	assert.Equal(t, "noreply@bidops.app", got.Sender.Email)

	noop := &BrevoClient{}
	assert.NoError(t, noop.Send(context.Background(), "a@b.qa", "x", "y"))
}
