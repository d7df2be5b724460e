package api

// Service accessors group Client methods by resource. Each service embeds
// *Client and resolves its paths from one configured template.

type AuthService struct{ *Client }

type ProfileService struct{ *Client }

type ParticipantsService struct{ *Client }

type ConsentService struct{ *Client }

type StudyConsentsService struct{ *Client }

type SchedulePlansService struct{ *Client }

type SchedulesService struct{ *Client }

type ActivitiesService struct{ *Client }

type SurveysService struct{ *Client }

type SurveyResponsesService struct{ *Client }

type TrackersService struct{ *Client }

type HealthDataService struct{ *Client }

type UploadsService struct{ *Client }

type UsersService struct{ *Client }

func (c *Client) Auth() AuthService {
	return AuthService{c}
}

func (c *Client) Profile() ProfileService {
	return ProfileService{c}
}

func (c *Client) Participants() ParticipantsService {
	return ParticipantsService{c}
}

func (c *Client) Consent() ConsentService {
	return ConsentService{c}
}

func (c *Client) StudyConsents() StudyConsentsService {
	return StudyConsentsService{c}
}

func (c *Client) SchedulePlans() SchedulePlansService {
	return SchedulePlansService{c}
}

func (c *Client) Schedules() SchedulesService {
	return SchedulesService{c}
}

func (c *Client) Activities() ActivitiesService {
	return ActivitiesService{c}
}

func (c *Client) Surveys() SurveysService {
	return SurveysService{c}
}

func (c *Client) SurveyResponses() SurveyResponsesService {
	return SurveyResponsesService{c}
}

func (c *Client) Trackers() TrackersService {
	return TrackersService{c}
}

func (c *Client) HealthData() HealthDataService {
	return HealthDataService{c}
}

func (c *Client) Uploads() UploadsService {
	return UploadsService{c}
}

func (c *Client) Users() UsersService {
	return UsersService{c}
}
