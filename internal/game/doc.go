// Package game implements the two-innings card match.
//
// The main type is Match, which owns one match's state: innings, round,
// scores, wickets, target and the per-side card pools. Each call to
// ResolveRound plays one round: the human's card is consumed, the
// Opponent picks the computer's card, the batter's batting skill is
// compared with the bowler's bowling skill, and the result is appended to
// the round history.
//
// # Basic Usage
//
//	m, err := game.NewMatch(id, game.Player, game.Config{
//	    Catalog:  cards,
//	    Opponent: policy,
//	    Ledger:   store,
//	    Logger:   logger,
//	})
//	state, err := m.ResolveRound(ctx, cardID)
//	if state.Phase == game.Complete {
//	    fmt.Println(state.Result.Winner)
//	}
//
// # Rules
//
// Each innings has seven rounds. A round is a Hit when the batter's
// batting skill is strictly greater than the bowler's bowling skill; the
// batting side then scores the batter's runs. Otherwise it is a Wicket.
// A side may play each card at most once per innings; pools reset when
// the second innings starts. The side batting second chases a target of
// the first innings score plus one.
//
// A Match is safe to call from several goroutines but serializes calls;
// separate matches share nothing except the collaborators in Config.
package game
