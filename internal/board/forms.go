package board

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/St1cky1/taskboard/internal/entity"
)

var ErrFormInvalid = errors.New("form is not valid")

// Mutator - мутации, которые вызывают формы
type Mutator interface {
	Create(title string, status entity.TaskStatus)
	Update(req entity.UpdateTaskRequest)
	Delete(taskID string)
}

func validTitle(title string) bool {
	title = strings.TrimSpace(title)
	return title != "" && utf8.RuneCountInString(title) <= entity.MaxTitleLength
}

// CreateForm - форма создания задачи, по умолчанию в колонке todo
type CreateForm struct {
	Title  string
	Column entity.ColumnID

	mut Mutator
}

func NewCreateForm(mut Mutator) *CreateForm {
	return &CreateForm{Column: entity.ColumnTodo, mut: mut}
}

func (f *CreateForm) CanSubmit() bool {
	return validTitle(f.Title) && f.Column.Valid()
}

// Submit отправляет задачу и сбрасывает форму
func (f *CreateForm) Submit() error {
	if !f.CanSubmit() {
		return ErrFormInvalid
	}
	f.mut.Create(strings.TrimSpace(f.Title), entity.ColumnIDToStatus(f.Column))
	f.Cancel()
	return nil
}

func (f *CreateForm) Cancel() {
	f.Title = ""
	f.Column = entity.ColumnTodo
}

// EditForm заполняется из карточки в момент открытия
type EditForm struct {
	Title  string
	Column entity.ColumnID

	card Card
	mut  Mutator
}

func OpenEditForm(mut Mutator, card Card) *EditForm {
	return &EditForm{
		Title:  card.Title,
		Column: card.ColumnID,
		card:   card,
		mut:    mut,
	}
}

func (f *EditForm) TaskID() string { return f.card.ID }

func (f *EditForm) CanSave() bool {
	return validTitle(f.Title) && f.Column.Valid()
}

// Cancel возвращает значения, с которыми форма была открыта
func (f *EditForm) Cancel() {
	f.Title = f.card.Title
	f.Column = f.card.ColumnID
}

func (f *EditForm) Save() error {
	if !f.CanSave() {
		return ErrFormInvalid
	}
	title := strings.TrimSpace(f.Title)
	status := entity.ColumnIDToStatus(f.Column)
	f.mut.Update(entity.UpdateTaskRequest{
		ID:     f.card.ID,
		Title:  &title,
		Status: &status,
	})
	return nil
}

// DeleteDialog - только подтверждение
type DeleteDialog struct {
	card Card
	mut  Mutator
}

func OpenDeleteDialog(mut Mutator, card Card) *DeleteDialog {
	return &DeleteDialog{card: card, mut: mut}
}

func (d *DeleteDialog) TaskID() string { return d.card.ID }

func (d *DeleteDialog) Confirm() {
	d.mut.Delete(d.card.ID)
}
