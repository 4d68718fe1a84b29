package worldflow

import "github.com/worldforge/worldforge/internal/domain/task"

// RegisterWorkflows binds all nine workflow kinds onto r. Call once during
// wiring, before the Runner accepts any task.
func RegisterWorkflows(r *Runner) {
	r.Register(task.KindInitWorldCreation, InitWorldCreation)
	r.Register(task.KindGenerateWorldDescription, GenerateWorldDescription)
	r.Register(task.KindGenerateWorldImage, GenerateWorldImage)
	r.Register(task.KindGenerateCharacterBatch, GenerateCharacterBatch)
	r.Register(task.KindGenerateCharacter, GenerateCharacter)
	r.Register(task.KindGenerateCharacterAvatar, GenerateCharacterAvatar)
	r.Register(task.KindGeneratePostBatch, GeneratePostBatch)
	r.Register(task.KindGeneratePost, GeneratePost)
	r.Register(task.KindGeneratePostImage, GeneratePostImage)
}
