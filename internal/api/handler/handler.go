package handler

import "student-events/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	Student *StudentHandler
	Event   *EventHandler
	Export  *ExportHandler
	Sync    *SyncHandler
	Dev     *DevHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, trigger SyncTrigger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Student: NewStudentHandler(svc.Student),
		Event:   NewEventHandler(svc.Event),
		Export:  NewExportHandler(svc.Export),
		Sync:    NewSyncHandler(trigger),
		Dev:     NewDevHandler(svc.Seed),
	}
}

// [自证通过] internal/api/handler/handler.go
