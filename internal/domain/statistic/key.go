package statistic

import (
	"fmt"
	"time"

	"github.com/hauntpass/backend/pkg/enum"
)

type OrderedBy string

var (
	OrderedByXP  = enum.New(OrderedBy("xp"))
	OrderedByTPX = enum.New(OrderedBy("tpx"))
)

func redisKeyLeaderboard(orderedBy OrderedBy, period Period, t time.Time) string {
	return fmt.Sprintf("leaderboard:%s:%s:%s", orderedBy, period, periodValue(period, t))
}
