package ledger

import (
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/model"
	"main/pkg/conn"
)

// TradeRecord is the archived form of a settled trade.
type TradeRecord struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	Exchange   string `gorm:"index"`
	Symbol     string `gorm:"index"`
	Direction  string
	EnterPrice float64
	ExitPrice  float64
	EnterTime  int64
	ExitTime   int64
	ExitReason string
	Roi        float64
	Fee        float64
}

func (TradeRecord) TableName() string {
	return "trades"
}

// Store archives settled trades to Postgres. A nil Store discards writes, so
// the database stays optional.
type Store struct {
	client *conn.Client
}

// NewStore migrates the trades table and returns a store bound to the client.
func NewStore(client *conn.Client) (*Store, error) {
	if client == nil {
		return nil, errors.New("nil database client")
	}
	if err := client.DB().AutoMigrate(&TradeRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate trades table")
	}
	return &Store{client: client}, nil
}

// SaveClosed inserts one settled trade. Open trades are skipped.
func (s *Store) SaveClosed(t model.Trade) error {
	if s == nil {
		return nil
	}
	if t.EnterPosition == nil || t.ExitPosition == nil {
		return nil
	}

	rec := TradeRecord{
		Exchange:   t.Exchange,
		Symbol:     t.Symbol,
		Direction:  t.Direction.String(),
		EnterPrice: t.EnterPosition.Price,
		ExitPrice:  t.ExitPosition.Price,
		EnterTime:  int64(t.EnterTimeMs),
		ExitTime:   int64(t.ExitTimeMs),
		ExitReason: t.ExitReason.String(),
		Fee:        t.Fee,
	}
	if t.Roi != nil {
		rec.Roi = *t.Roi
	}

	if err := s.client.DB().Create(&rec).Error; err != nil {
		return errors.Wrapf(err, "archive trade %s %s", t.Symbol, t.Direction)
	}
	logs.Infof("archived trade %s %s roi=%.4f", t.Symbol, t.Direction, rec.Roi)
	return nil
}
