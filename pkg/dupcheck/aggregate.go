package dupcheck

import "sort"

// Aggregate compares one existing record with the candidate using the rule set.
// It returns a match only when the summed score reaches the rule set's threshold;
// records below the threshold are excluded, not reported with a low score.
func Aggregate(candidate, existing Record, rs RuleSet) (*DuplicateMatch, bool) {
	return aggregate(NewPair(candidate, existing, nil), rs)
}

func aggregate(p *Pair, rs RuleSet) (*DuplicateMatch, bool) {
	score, labels := rs.Evaluate(p)
	if score < rs.Threshold {
		return nil, false
	}
	return &DuplicateMatch{
		ID:            p.Existing.RecordID(),
		Score:         score,
		MatchedFields: labels,
		Record:        p.Existing,
	}, true
}

// Rank sorts matches in place by score descending, keeping pool order for ties, derives
// the confidence from the top score and keeps at most maxResults matches.
// HasDuplicates reflects the matches before truncation.
func Rank(matches []DuplicateMatch, rs RuleSet, maxResults int) *DuplicateDetectionResult {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	result := &DuplicateDetectionResult{
		HasDuplicates: len(matches) > 0,
		Matches:       []DuplicateMatch{},
		Confidence:    ConfidenceLow,
	}
	if len(matches) == 0 {
		return result
	}

	result.Confidence = rs.Confidence(matches[0].Score)
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	result.Matches = matches

	return result
}
