// audit/emitter.go
package audit

import "context"

// Convenience wrappers used by producing domains so they never hand-construct
// append requests. Each fixes the action; actor type defaults to SYSTEM
// inside Append.

func (s *service) LogCreate(ctx context.Context, event Event) (*AuditLogEntry, error) {
	event.Action = ActionCreate
	return s.Append(ctx, event)
}

func (s *service) LogUpdate(ctx context.Context, event Event) (*AuditLogEntry, error) {
	event.Action = ActionUpdate
	return s.Append(ctx, event)
}

func (s *service) LogDelete(ctx context.Context, event Event) (*AuditLogEntry, error) {
	event.Action = ActionDelete
	return s.Append(ctx, event)
}

func (s *service) LogAction(ctx context.Context, action Action, event Event) (*AuditLogEntry, error) {
	event.Action = action
	return s.Append(ctx, event)
}
