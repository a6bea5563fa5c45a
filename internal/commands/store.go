package commands

import (
	"fmt"

	"github.com/hay-kot/postbox/internal/core/config"
	"github.com/hay-kot/postbox/internal/core/message"
	"github.com/hay-kot/postbox/internal/store/badgerdb"
	"github.com/hay-kot/postbox/internal/store/jsonfile"
)

// openStore opens the message store selected by cfg. The returned close
// function must be called once the store is no longer needed.
func openStore(cfg *config.Config) (message.Store, func() error, error) {
	path := cfg.StoragePath()

	switch cfg.Store.Driver {
	case config.DriverJSONFile:
		return jsonfile.New(path), func() error { return nil }, nil
	case config.DriverBadger:
		s, err := badgerdb.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
