package remote

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const changeChannel = "inventory:changes"

// DocumentRow is how documents land in postgres: one JSONB row per entity,
// keyed by (collection, doc_id).
type DocumentRow struct {
	Collection string    `gorm:"primaryKey;size:64"`
	DocID      string    `gorm:"primaryKey;size:64;column:doc_id"`
	Data       []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time `gorm:"index"`
}

func (DocumentRow) TableName() string { return "inventory_documents" }

// GormService implements Service over postgres, with redis pub/sub carrying
// change notifications so every instance (this one included) reloads and
// fans out the affected collection.
type GormService struct {
	db  *gorm.DB
	rdb *redis.Client

	mu      sync.Mutex
	subs    map[string]map[int]func(Snapshot)
	nextSub int

	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func NewGormService(db *gorm.DB, rdb *redis.Client) *GormService {
	s := &GormService{
		db:   db,
		rdb:  rdb,
		subs: make(map[string]map[int]func(Snapshot)),
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.pubsub = rdb.Subscribe(ctx, changeChannel)
	go s.listen(ctx)
	return s
}

func (s *GormService) Close() {
	s.cancel()
	_ = s.pubsub.Close()
}

func (s *GormService) Create(ctx context.Context, collection string, data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", errors.Wrap(err, "marshal document")
	}
	id, raw, err := ensureID(raw)
	if err != nil {
		return "", err
	}
	row := DocumentRow{Collection: collection, DocID: id, Data: raw, UpdatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error; err != nil {
		return "", errors.Wrapf(err, "create %s/%s", collection, id)
	}
	s.notify(ctx, collection)
	return id, nil
}

func (s *GormService) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DocumentRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "collection = ? AND doc_id = ?", collection, id).Error; err != nil {
			return err
		}
		var doc map[string]any
		if err := json.Unmarshal(row.Data, &doc); err != nil {
			return err
		}
		for k, v := range partial {
			doc[k] = v
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		row.Data = raw
		row.UpdatedAt = time.Now().UTC()
		return tx.Save(&row).Error
	})
	if err != nil {
		return errors.Wrapf(err, "update %s/%s", collection, id)
	}
	s.notify(ctx, collection)
	return nil
}

func (s *GormService) Delete(ctx context.Context, collection, id string) error {
	if err := s.db.WithContext(ctx).
		Delete(&DocumentRow{}, "collection = ? AND doc_id = ?", collection, id).Error; err != nil {
		return errors.Wrapf(err, "delete %s/%s", collection, id)
	}
	s.notify(ctx, collection)
	return nil
}

func (s *GormService) Subscribe(collection string, onChange func(Snapshot)) (func(), error) {
	s.mu.Lock()
	s.nextSub++
	subID := s.nextSub
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[int]func(Snapshot))
	}
	s.subs[collection][subID] = onChange
	s.mu.Unlock()

	// Initial snapshot, like a fresh listener attaching to the hosted store.
	go func() {
		snap, err := s.load(context.Background(), collection)
		if err != nil {
			log.Printf("initial snapshot load for %s failed: %v", collection, err)
			return
		}
		onChange(snap)
	}()

	return func() {
		s.mu.Lock()
		delete(s.subs[collection], subID)
		s.mu.Unlock()
	}, nil
}

func (s *GormService) load(ctx context.Context, collection string) (Snapshot, error) {
	var rows []DocumentRow
	if err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("updated_at ASC, doc_id ASC").
		Find(&rows).Error; err != nil {
		return Snapshot{}, errors.Wrapf(err, "load collection %s", collection)
	}
	snap := Snapshot{Collection: collection, Docs: make([]Document, 0, len(rows))}
	for _, r := range rows {
		snap.Docs = append(snap.Docs, Document{ID: r.DocID, Data: json.RawMessage(r.Data)})
	}
	return snap, nil
}

func (s *GormService) notify(ctx context.Context, collection string) {
	if err := s.rdb.Publish(ctx, changeChannel, collection).Err(); err != nil {
		log.Printf("change notify for %s failed: %v", collection, err)
	}
}

func (s *GormService) listen(ctx context.Context) {
	for msg := range s.pubsub.Channel() {
		collection := msg.Payload
		s.mu.Lock()
		fns := make([]func(Snapshot), 0, len(s.subs[collection]))
		for _, fn := range s.subs[collection] {
			fns = append(fns, fn)
		}
		s.mu.Unlock()
		if len(fns) == 0 {
			continue
		}
		snap, err := s.load(ctx, collection)
		if err != nil {
			log.Printf("snapshot load for %s failed: %v", collection, err)
			continue
		}
		for _, fn := range fns {
			fn(snap)
		}
	}
}

// ensureID pulls the document id out of the marshalled payload, generating
// and injecting one when absent. Client-generated ids make Create an
// idempotent upsert.
func ensureID(raw json.RawMessage) (string, json.RawMessage, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", nil, errors.Wrap(err, "unmarshal document id")
	}
	if probe.ID != "" {
		return probe.ID, raw, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", nil, errors.Wrap(err, "unmarshal document")
	}
	id := uuid.NewString()
	doc["id"] = id
	out, err := json.Marshal(doc)
	if err != nil {
		return "", nil, errors.Wrap(err, "remarshal document")
	}
	return id, out, nil
}
