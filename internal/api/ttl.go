package api

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cmellojr/chessclub/internal/constants"
)

var (
	archivePattern       = regexp.MustCompile(`/games/(\d{4})/(\d{2})$`)
	playerProfilePattern = regexp.MustCompile(`/pub/player/[^/]+$`)
	clubMembersPattern   = regexp.MustCompile(`/pub/club/[^/]+/members$`)
	clubInfoPattern      = regexp.MustCompile(`/pub/club/[^/]+$`)
)

type ttlRule struct {
	name    string
	matches func(url string, now time.Time) bool
	ttl     time.Duration
}

// ttlRules is evaluated in order; the first matching rule wins.
// Anything unmatched (notably token-exchange endpoints) is not cached.
var ttlRules = []ttlRule{
	{"past-archive", isPastMonthArchive, constants.PastArchiveTTL},
	{"current-archive", isCurrentMonthArchive, constants.CurrentArchiveTTL},
	{"player-profile", matchPattern(playerProfilePattern), constants.PlayerProfileTTL},
	{"club-members", matchPattern(clubMembersPattern), constants.ClubMembersTTL},
	{"club-info", matchPattern(clubInfoPattern), constants.ClubInfoTTL},
	{"leaderboard", func(url string, _ time.Time) bool {
		return strings.HasSuffix(url, "/leaderboard")
	}, constants.LeaderboardTTL},
	{"tournament-list", func(url string, _ time.Time) bool {
		return strings.Contains(url, "/clubs/live/past/")
	}, constants.TournamentListTTL},
}

// cacheTTL returns the TTL for url, or false when the response must not
// be cached. now must be in UTC: the past/current month split for game
// archives follows the UTC calendar.
func cacheTTL(url string, now time.Time) (time.Duration, bool) {
	for _, rule := range ttlRules {
		if rule.matches(url, now) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func matchPattern(re *regexp.Regexp) func(string, time.Time) bool {
	return func(url string, _ time.Time) bool {
		return re.MatchString(url)
	}
}

func archiveMonth(url string) (year int, month int, ok bool) {
	m := archivePattern.FindStringSubmatch(url)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	return year, month, true
}

func isPastMonthArchive(url string, now time.Time) bool {
	year, month, ok := archiveMonth(url)
	if !ok {
		return false
	}
	return year < now.Year() || (year == now.Year() && month < int(now.Month()))
}

func isCurrentMonthArchive(url string, now time.Time) bool {
	year, month, ok := archiveMonth(url)
	if !ok {
		return false
	}
	return year > now.Year() || (year == now.Year() && month >= int(now.Month()))
}
