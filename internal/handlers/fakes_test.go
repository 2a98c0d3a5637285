package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"investmate-backend/internal/media"
	"investmate-backend/internal/models"
	"investmate-backend/internal/notify"
	"investmate-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type memUsers struct {
	mu      sync.Mutex
	users   map[bson.ObjectID]*models.User
	deleted []bson.ObjectID
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[bson.ObjectID]*models.User{}}
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now()
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id bson.ObjectID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Password = hash
	}
	return nil
}

func (m *memUsers) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *memUsers) get(id bson.ObjectID) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

type memStartups struct {
	mu         sync.Mutex
	items      []*models.Startup
	createErr  error
	lastFilter repository.StartupFilter
	listing    []models.StartupListing
}

func (m *memStartups) Create(_ context.Context, st *models.Startup) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st.ID = bson.NewObjectID()
	st.CreatedAt = time.Now()
	c := *st
	m.items = append(m.items, &c)
	return nil
}

func (m *memStartups) FindByID(_ context.Context, id bson.ObjectID) (*models.Startup, error) {
	return m.first(func(s *models.Startup) bool { return s.ID == id }), nil
}

func (m *memStartups) FindByUserID(_ context.Context, userID bson.ObjectID) (*models.Startup, error) {
	return m.first(func(s *models.Startup) bool { return s.UserID == userID }), nil
}

func (m *memStartups) first(pred func(*models.Startup) bool) *models.Startup {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.items {
		if pred(s) {
			c := *s
			return &c
		}
	}
	return nil
}

func (m *memStartups) UpdateByUserID(_ context.Context, userID bson.ObjectID, fields bson.M) (*models.Startup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.items {
		if s.UserID != userID {
			continue
		}
		if err := models.DecodeFields(fields, s); err != nil {
			return nil, err
		}
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (m *memStartups) List(_ context.Context, filter repository.StartupFilter) ([]models.StartupListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	out := make([]models.StartupListing, len(m.listing))
	copy(out, m.listing)
	return out, nil
}

func (m *memStartups) FindByIndustries(_ context.Context, industries []string, limit int64) ([]models.Startup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Startup
	for _, s := range m.items {
		for _, ind := range industries {
			if strings.EqualFold(s.Industry, ind) && int64(len(out)) < limit {
				out = append(out, *s)
				break
			}
		}
	}
	return out, nil
}

func (m *memStartups) FindAny(_ context.Context, limit int64) ([]models.Startup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Startup
	for _, s := range m.items {
		if int64(len(out)) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

type memInvestors struct {
	mu    sync.Mutex
	items []*models.Investor
}

func (m *memInvestors) Create(_ context.Context, inv *models.Investor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv.ID = bson.NewObjectID()
	c := *inv
	m.items = append(m.items, &c)
	return nil
}

func (m *memInvestors) FindByID(_ context.Context, id bson.ObjectID) (*models.Investor, error) {
	return m.first(func(i *models.Investor) bool { return i.ID == id }), nil
}

func (m *memInvestors) FindByUserID(_ context.Context, userID bson.ObjectID) (*models.Investor, error) {
	return m.first(func(i *models.Investor) bool { return i.UserID == userID }), nil
}

func (m *memInvestors) first(pred func(*models.Investor) bool) *models.Investor {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.items {
		if pred(i) {
			c := *i
			return &c
		}
	}
	return nil
}

func (m *memInvestors) UpdateByUserID(_ context.Context, userID bson.ObjectID, fields bson.M) (*models.Investor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.items {
		if i.UserID != userID {
			continue
		}
		if err := models.DecodeFields(fields, i); err != nil {
			return nil, err
		}
		c := *i
		return &c, nil
	}
	return nil, nil
}

func (m *memInvestors) FindBySector(_ context.Context, sector string, limit int64) ([]models.Investor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Investor
	for _, i := range m.items {
		for _, s := range i.FocusSectors() {
			if sector != "" && strings.Contains(strings.ToLower(s), strings.ToLower(sector)) && int64(len(out)) < limit {
				out = append(out, *i)
				break
			}
		}
	}
	return out, nil
}

func (m *memInvestors) FindAny(_ context.Context, limit int64) ([]models.Investor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Investor
	for _, i := range m.items {
		if int64(len(out)) < limit {
			out = append(out, *i)
		}
	}
	return out, nil
}

type memConnections struct {
	mu    sync.Mutex
	items []*models.Connection
}

func (m *memConnections) Create(_ context.Context, conn *models.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.InvestorID == conn.InvestorID && c.StartupID == conn.StartupID {
			return repository.ErrDuplicate
		}
	}
	conn.ID = bson.NewObjectID()
	conn.CreatedAt = time.Now()
	c := *conn
	m.items = append(m.items, &c)
	return nil
}

func (m *memConnections) FindByID(_ context.Context, id bson.ObjectID) (*models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memConnections) UpdateStatus(_ context.Context, id bson.ObjectID, from, to string) (*models.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id && c.Status == from {
			c.Status = to
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memConnections) ListForInvestor(_ context.Context, investorID bson.ObjectID) ([]models.ConnectionView, error) {
	return m.list(func(c *models.Connection) bool { return c.InvestorID == investorID }), nil
}

func (m *memConnections) ListForStartup(_ context.Context, startupID bson.ObjectID) ([]models.ConnectionView, error) {
	return m.list(func(c *models.Connection) bool { return c.StartupID == startupID }), nil
}

func (m *memConnections) list(pred func(*models.Connection) bool) []models.ConnectionView {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ConnectionView{}
	for _, c := range m.items {
		if pred(c) {
			out = append(out, models.ConnectionView{ID: c.ID, Status: c.Status, Message: c.Message, CreatedAt: c.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type fakeUploader struct {
	gotURI  string
	gotOpts media.UploadOptions
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, dataURI string, opts media.UploadOptions) (string, error) {
	f.gotURI = dataURI
	f.gotOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example/" + opts.Folder + "/" + opts.PublicID + ".png", nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

var errStore = errors.New("store unavailable")
