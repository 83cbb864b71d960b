package pageant_api_client

const (
	endpointEvents            = "/api/events"
	endpointCandidates        = "/api/candidates"
	endpointScores            = "/api/scores"
	endpointMyScores          = "/api/scores/my-scores"
	endpointScoresByEvent     = "/api/scores/event/%s"
	endpointTiebreakerCurrent = "/api/judge/tiebreaker/current"
	endpointTiebreakerVote    = "/api/judge/tiebreaker/vote"
	endpointPublicVotes       = "/api/votes"
)
