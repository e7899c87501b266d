package rollback

import (
	"fmt"
	"time"
)

func errNoSnapshot(t time.Time) error {
	return fmt.Errorf("rollback: no snapshot available at or before %s", t.Format(time.RFC3339Nano))
}
