package models

// WebhookEvent 是觸發端送來的事件，只取用來源檔案與建立者
type WebhookEvent struct {
	Trigger string `json:"trigger"`
	Source  struct {
		ID        string `json:"id"`
		Type      string `json:"type"`
		CreatedBy struct {
			ID string `json:"id"`
		} `json:"created_by"`
	} `json:"source"`
}

// FileID 回傳事件中的檔案 ID
func (e WebhookEvent) FileID() string { return e.Source.ID }

// ActorID 回傳檔案建立者 ID
func (e WebhookEvent) ActorID() string { return e.Source.CreatedBy.ID }
