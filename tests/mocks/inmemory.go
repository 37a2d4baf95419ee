package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
	"linkup-backend/domain/events"
	pkgerrors "linkup-backend/pkg/errors"
)

// The in-memory stores below mirror the persistence semantics the services
// rely on: reads reconstruct fresh entities from stored state, and the
// pending-status guard is checked under a lock so concurrent transitions see
// exactly-one-wins behavior.

type accountRecord struct {
	username    string
	email       string
	name        string
	connections map[string]struct{}
	createdAt   time.Time
	updatedAt   time.Time
}

// InMemoryAccountStore is a mutex-guarded AccountRepository fake
type InMemoryAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*accountRecord

	// FailAddConnectionFor makes AddConnection fail for the given owner ID,
	// for exercising partial-failure paths
	FailAddConnectionFor string
}

// NewInMemoryAccountStore creates an empty account store
func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		accounts: make(map[string]*accountRecord),
	}
}

func (s *InMemoryAccountStore) Save(ctx context.Context, account *entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	connections := make(map[string]struct{})
	for _, c := range account.Connections() {
		connections[c.String()] = struct{}{}
	}

	s.accounts[account.ID().String()] = &accountRecord{
		username:    account.Username(),
		email:       account.Email(),
		name:        account.Name(),
		connections: connections,
		createdAt:   account.CreatedAt(),
		updatedAt:   account.UpdatedAt(),
	}
	return nil
}

func (s *InMemoryAccountStore) GetByID(ctx context.Context, id valueobjects.AccountID) (*entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconstructLocked(id.String())
}

func (s *InMemoryAccountStore) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, record := range s.accounts {
		if record.username == username {
			return s.reconstructLocked(id)
		}
	}
	return nil, pkgerrors.NewNotFoundError("account")
}

func (s *InMemoryAccountStore) AddConnection(ctx context.Context, owner, other valueobjects.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner.String() == s.FailAddConnectionFor {
		return pkgerrors.NewDatabaseError("add connection", context.DeadlineExceeded)
	}

	record, ok := s.accounts[owner.String()]
	if !ok {
		return pkgerrors.NewNotFoundError("account")
	}
	record.connections[other.String()] = struct{}{}
	record.updatedAt = time.Now()
	return nil
}

func (s *InMemoryAccountStore) RemoveConnection(ctx context.Context, owner, other valueobjects.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.accounts[owner.String()]
	if !ok {
		return pkgerrors.NewNotFoundError("account")
	}
	delete(record.connections, other.String())
	record.updatedAt = time.Now()
	return nil
}

func (s *InMemoryAccountStore) ListAccounts(ctx context.Context, limit int, cursor string) ([]*entities.Account, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", pkgerrors.NewValidationError("invalid pagination cursor")
		}
		start = parsed
	}
	if limit <= 0 {
		limit = len(ids)
	}

	out := make([]*entities.Account, 0, limit)
	i := start
	for ; i < len(ids) && len(out) < limit; i++ {
		account, err := s.reconstructLocked(ids[i])
		if err != nil {
			return nil, "", err
		}
		out = append(out, account)
	}

	next := ""
	if i < len(ids) {
		next = strconv.Itoa(i)
	}
	return out, next, nil
}

func (s *InMemoryAccountStore) reconstructLocked(id string) (*entities.Account, error) {
	record, ok := s.accounts[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("account")
	}

	accountID, err := valueobjects.NewAccountIDFromString(id)
	if err != nil {
		return nil, err
	}
	connections := make([]valueobjects.AccountID, 0, len(record.connections))
	for c := range record.connections {
		connID, err := valueobjects.NewAccountIDFromString(c)
		if err != nil {
			return nil, err
		}
		connections = append(connections, connID)
	}

	return entities.ReconstructAccount(accountID, record.username, record.email, record.name, connections, record.createdAt, record.updatedAt)
}

type requestRecord struct {
	sender    string
	recipient string
	status    entities.RequestStatus
	createdAt time.Time
	updatedAt time.Time
}

// InMemoryRequestStore is a mutex-guarded ConnectionRequestRepository fake.
// UpdateStatusIfPending checks and commits under one lock, matching the
// conditional-write semantics of the real store.
type InMemoryRequestStore struct {
	mu       sync.Mutex
	requests map[string]*requestRecord
}

// NewInMemoryRequestStore creates an empty request store
func NewInMemoryRequestStore() *InMemoryRequestStore {
	return &InMemoryRequestStore{
		requests: make(map[string]*requestRecord),
	}
}

func (s *InMemoryRequestStore) Create(ctx context.Context, request *entities.ConnectionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := request.ID().String()
	if _, exists := s.requests[id]; exists {
		return pkgerrors.NewConflictError("connection request already exists")
	}
	s.requests[id] = &requestRecord{
		sender:    request.Sender().String(),
		recipient: request.Recipient().String(),
		status:    request.Status(),
		createdAt: request.CreatedAt(),
		updatedAt: request.UpdatedAt(),
	}
	return nil
}

func (s *InMemoryRequestStore) GetByID(ctx context.Context, id valueobjects.RequestID) (*entities.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.requests[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("connection request")
	}
	return s.reconstructLocked(id.String(), record)
}

func (s *InMemoryRequestStore) FindPendingBetween(ctx context.Context, a, b valueobjects.AccountID) (*entities.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairKey := entities.PairKey(a, b)
	for id, record := range s.requests {
		if record.status != entities.RequestStatusPending {
			continue
		}
		senderID, _ := valueobjects.NewAccountIDFromString(record.sender)
		recipientID, _ := valueobjects.NewAccountIDFromString(record.recipient)
		if entities.PairKey(senderID, recipientID) == pairKey {
			return s.reconstructLocked(id, record)
		}
	}
	return nil, nil
}

func (s *InMemoryRequestStore) ListPendingByRecipient(ctx context.Context, recipient valueobjects.AccountID) ([]*entities.ConnectionRequest, error) {
	return s.listPending(func(r *requestRecord) bool { return r.recipient == recipient.String() })
}

func (s *InMemoryRequestStore) ListPendingBySender(ctx context.Context, sender valueobjects.AccountID) ([]*entities.ConnectionRequest, error) {
	return s.listPending(func(r *requestRecord) bool { return r.sender == sender.String() })
}

func (s *InMemoryRequestStore) listPending(match func(*requestRecord) bool) ([]*entities.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entities.ConnectionRequest, 0)
	for id, record := range s.requests {
		if record.status != entities.RequestStatusPending || !match(record) {
			continue
		}
		request, err := s.reconstructLocked(id, record)
		if err != nil {
			return nil, err
		}
		out = append(out, request)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

func (s *InMemoryRequestStore) UpdateStatusIfPending(ctx context.Context, id valueobjects.RequestID, status entities.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.requests[id.String()]
	if !ok {
		return pkgerrors.NewConflictError("request already processed")
	}
	if record.status != entities.RequestStatusPending {
		return pkgerrors.NewConflictError("request already processed")
	}
	record.status = status
	record.updatedAt = time.Now()
	return nil
}

func (s *InMemoryRequestStore) reconstructLocked(id string, record *requestRecord) (*entities.ConnectionRequest, error) {
	requestID, err := valueobjects.NewRequestIDFromString(id)
	if err != nil {
		return nil, err
	}
	senderID, err := valueobjects.NewAccountIDFromString(record.sender)
	if err != nil {
		return nil, err
	}
	recipientID, err := valueobjects.NewAccountIDFromString(record.recipient)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructConnectionRequest(requestID, senderID, recipientID, record.status, record.createdAt, record.updatedAt)
}

type notificationRecord struct {
	id          string
	recipient   string
	notifType   entities.NotificationType
	relatedUser string
	relatedPost string
	read        bool
	createdAt   time.Time
}

// InMemoryNotificationStore is a mutex-guarded NotificationRepository fake
type InMemoryNotificationStore struct {
	mu      sync.Mutex
	records []*notificationRecord
}

// NewInMemoryNotificationStore creates an empty notification store
func NewInMemoryNotificationStore() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{}
}

func (s *InMemoryNotificationStore) Append(ctx context.Context, notification *entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	related := ""
	if !notification.RelatedUser().IsZero() {
		related = notification.RelatedUser().String()
	}
	s.records = append(s.records, &notificationRecord{
		id:          notification.ID(),
		recipient:   notification.Recipient().String(),
		notifType:   notification.Type(),
		relatedUser: related,
		relatedPost: notification.RelatedPost(),
		read:        notification.Read(),
		createdAt:   notification.CreatedAt(),
	})
	return nil
}

func (s *InMemoryNotificationStore) GetByID(ctx context.Context, id string) (*entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.id == id {
			return reconstructNotificationRecord(record)
		}
	}
	return nil, pkgerrors.NewNotFoundError("notification")
}

func (s *InMemoryNotificationStore) ListByRecipient(ctx context.Context, recipient valueobjects.AccountID, limit int, cursor string) ([]*entities.Notification, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matching := make([]*notificationRecord, 0)
	for _, record := range s.records {
		if record.recipient == recipient.String() {
			matching = append(matching, record)
		}
	}
	// Newest first
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].createdAt.After(matching[j].createdAt)
	})

	start := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", pkgerrors.NewValidationError("invalid pagination cursor")
		}
		start = parsed
	}
	if limit <= 0 {
		limit = len(matching)
	}

	out := make([]*entities.Notification, 0, limit)
	i := start
	for ; i < len(matching) && len(out) < limit; i++ {
		notification, err := reconstructNotificationRecord(matching[i])
		if err != nil {
			return nil, "", err
		}
		out = append(out, notification)
	}

	next := ""
	if i < len(matching) {
		next = strconv.Itoa(i)
	}
	return out, next, nil
}

func (s *InMemoryNotificationStore) CountUnread(ctx context.Context, recipient valueobjects.AccountID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.records {
		if record.recipient == recipient.String() && !record.read {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryNotificationStore) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.id == id {
			record.read = true
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("notification")
}

func reconstructNotificationRecord(record *notificationRecord) (*entities.Notification, error) {
	recipientID, err := valueobjects.NewAccountIDFromString(record.recipient)
	if err != nil {
		return nil, err
	}
	var relatedUser valueobjects.AccountID
	if record.relatedUser != "" {
		relatedUser, err = valueobjects.NewAccountIDFromString(record.relatedUser)
		if err != nil {
			return nil, err
		}
	}
	return entities.ReconstructNotification(record.id, recipientID, record.notifType, relatedUser, record.relatedPost, record.read, record.createdAt)
}

// SentEmail is one captured email
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// CapturingMailer records sent emails for assertion, including those sent
// from detached goroutines
type CapturingMailer struct {
	mu   sync.Mutex
	sent []SentEmail

	// Err, when set, is returned from every Send
	Err error
}

// NewCapturingMailer creates an empty capturing mailer
func NewCapturingMailer() *CapturingMailer {
	return &CapturingMailer{}
}

func (m *CapturingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// Sent returns a copy of the captured emails
func (m *CapturingMailer) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}

// CapturingPublisher records published events for assertion
type CapturingPublisher struct {
	mu        sync.Mutex
	published []events.DomainEvent
}

// NewCapturingPublisher creates an empty capturing publisher
func NewCapturingPublisher() *CapturingPublisher {
	return &CapturingPublisher{}
}

func (p *CapturingPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
	return nil
}

func (p *CapturingPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, batch...)
	return nil
}

// Published returns a copy of the captured events
func (p *CapturingPublisher) Published() []events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.DomainEvent, len(p.published))
	copy(out, p.published)
	return out
}
