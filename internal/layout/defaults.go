package layout

// Built-in default layouts, one per archetype. These are the factory-reset
// target and the starting point when no saved template is applied. Returned
// layouts are fresh copies so callers can mutate them freely.

var conferenceDefault = Layout{
	KeyImage:          {X: 50, Y: 24, Visible: true, Width: ptrFloat(30)},
	KeyName:           {X: 50, Y: 46, Visible: true, FontSize: ptrInt(22), TextAlign: "center"},
	KeyCompany:        {X: 50, Y: 56, Visible: true, FontSize: ptrInt(14), TextAlign: "center"},
	KeyRole:           {X: 50, Y: 64, Visible: true, FontSize: ptrInt(12), TextAlign: "center"},
	KeyPassType:       {X: 50, Y: 72, Visible: true, FontSize: ptrInt(12), TextAlign: "center"},
	KeyEventName:      {X: 50, Y: 10, Visible: true, FontSize: ptrInt(13), TextAlign: "center"},
	KeyRegistrationID: {X: 50, Y: 80, Visible: true, FontSize: ptrInt(10), TextAlign: "center"},
	KeyQRCode:         {X: 50, Y: 90, Visible: true, Width: ptrFloat(18)},
}

var schoolDefault = Layout{
	KeyImage:          {X: 50, Y: 22, Visible: true, Width: ptrFloat(32)},
	KeyName:           {X: 50, Y: 44, Visible: true, FontSize: ptrInt(22), TextAlign: "center"},
	KeyClass:          {X: 50, Y: 54, Visible: true, FontSize: ptrInt(14), TextAlign: "center"},
	KeyGuardianName:   {X: 50, Y: 62, Visible: true, FontSize: ptrInt(12), TextAlign: "center"},
	KeyDateOfBirth:    {X: 50, Y: 70, Visible: true, FontSize: ptrInt(11), TextAlign: "center"},
	KeySchoolID:       {X: 50, Y: 78, Visible: true, FontSize: ptrInt(11), TextAlign: "center"},
	KeyRegistrationID: {X: 50, Y: 84, Visible: false, FontSize: ptrInt(10), TextAlign: "center"},
	KeyQRCode:         {X: 50, Y: 92, Visible: true, Width: ptrFloat(16)},
}

var corporateDefault = Layout{
	KeyImage:          {X: 50, Y: 24, Visible: true, Width: ptrFloat(30)},
	KeyName:           {X: 50, Y: 46, Visible: true, FontSize: ptrInt(22), TextAlign: "center"},
	KeyJobTitle:       {X: 50, Y: 56, Visible: true, FontSize: ptrInt(14), TextAlign: "center"},
	KeyCompany:        {X: 50, Y: 64, Visible: true, FontSize: ptrInt(13), TextAlign: "center"},
	KeyValidUntil:     {X: 50, Y: 74, Visible: true, FontSize: ptrInt(11), TextAlign: "center"},
	KeyRegistrationID: {X: 50, Y: 82, Visible: true, FontSize: ptrInt(10), TextAlign: "center"},
	KeyQRCode:         {X: 50, Y: 91, Visible: true, Width: ptrFloat(18)},
}

// Default returns a copy of the built-in layout for the archetype. Unknown
// archetypes get the conference layout.
func Default(archetype string) Layout {
	switch archetype {
	case "school":
		return schoolDefault.Clone()
	case "corporate":
		return corporateDefault.Clone()
	default:
		return conferenceDefault.Clone()
	}
}
