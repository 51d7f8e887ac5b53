package database

// OrderedEntry 由 Profile 下每种可排序子项实现。
type OrderedEntry interface {
	EntryID() uint
	SetEntryID(id uint)
	OwnerProfileID() uint
	SetOwnerProfileID(id uint)
	Order() int
	SetOrder(order int)
	SetVisible(visible bool)
	// OrderScope 返回该子项所属 display_order 序列的列过滤条件。
	OrderScope() map[string]any
}

func profileScope(profileID uint) map[string]any {
	return map[string]any{"profile_id": profileID}
}

func (e *Education) EntryID() uint               { return e.ID }
func (e *Education) SetEntryID(id uint)          { e.ID = id }
func (e *Education) OwnerProfileID() uint        { return e.ProfileID }
func (e *Education) SetOwnerProfileID(id uint)   { e.ProfileID = id }
func (e *Education) Order() int                  { return e.DisplayOrder }
func (e *Education) SetOrder(order int)          { e.DisplayOrder = order }
func (e *Education) SetVisible(visible bool)     { e.IsVisible = visible }
func (e *Education) OrderScope() map[string]any  { return profileScope(e.ProfileID) }
func (e *Experience) EntryID() uint              { return e.ID }
func (e *Experience) SetEntryID(id uint)         { e.ID = id }
func (e *Experience) OwnerProfileID() uint       { return e.ProfileID }
func (e *Experience) SetOwnerProfileID(id uint)  { e.ProfileID = id }
func (e *Experience) Order() int                 { return e.DisplayOrder }
func (e *Experience) SetOrder(order int)         { e.DisplayOrder = order }
func (e *Experience) SetVisible(visible bool)    { e.IsVisible = visible }
func (e *Experience) OrderScope() map[string]any { return profileScope(e.ProfileID) }
func (e *Language) EntryID() uint                { return e.ID }
func (e *Language) SetEntryID(id uint)           { e.ID = id }
func (e *Language) OwnerProfileID() uint         { return e.ProfileID }
func (e *Language) SetOwnerProfileID(id uint)    { e.ProfileID = id }
func (e *Language) Order() int                   { return e.DisplayOrder }
func (e *Language) SetOrder(order int)           { e.DisplayOrder = order }
func (e *Language) SetVisible(visible bool)      { e.IsVisible = visible }
func (e *Language) OrderScope() map[string]any   { return profileScope(e.ProfileID) }

func (e *Certification) EntryID() uint              { return e.ID }
func (e *Certification) SetEntryID(id uint)         { e.ID = id }
func (e *Certification) OwnerProfileID() uint       { return e.ProfileID }
func (e *Certification) SetOwnerProfileID(id uint)  { e.ProfileID = id }
func (e *Certification) Order() int                 { return e.DisplayOrder }
func (e *Certification) SetOrder(order int)         { e.DisplayOrder = order }
func (e *Certification) SetVisible(visible bool)    { e.IsVisible = visible }
func (e *Certification) OrderScope() map[string]any { return profileScope(e.ProfileID) }
func (e *SocialNetwork) EntryID() uint              { return e.ID }
func (e *SocialNetwork) SetEntryID(id uint)         { e.ID = id }
func (e *SocialNetwork) OwnerProfileID() uint       { return e.ProfileID }
func (e *SocialNetwork) SetOwnerProfileID(id uint)  { e.ProfileID = id }
func (e *SocialNetwork) Order() int                 { return e.DisplayOrder }
func (e *SocialNetwork) SetOrder(order int)         { e.DisplayOrder = order }
func (e *SocialNetwork) SetVisible(visible bool)    { e.IsVisible = visible }
func (e *SocialNetwork) OrderScope() map[string]any { return profileScope(e.ProfileID) }

func (e *Skill) EntryID() uint             { return e.ID }
func (e *Skill) SetEntryID(id uint)        { e.ID = id }
func (e *Skill) OwnerProfileID() uint      { return e.ProfileID }
func (e *Skill) SetOwnerProfileID(id uint) { e.ProfileID = id }
func (e *Skill) Order() int                { return e.DisplayOrder }
func (e *Skill) SetOrder(order int)        { e.DisplayOrder = order }
func (e *Skill) SetVisible(visible bool)   { e.IsVisible = visible }

// OrderScope 技能按简历与分类分别排序。
func (e *Skill) OrderScope() map[string]any {
	return map[string]any{"profile_id": e.ProfileID, "category": e.Category}
}
