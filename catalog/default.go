package catalog

// BuiltinSource names the compiled-in reference table
const BuiltinSource = "builtin"

// builtinEntries is the reference table shipped with the service. Factors
// follow the commonly used LEDD conversion tables; maximum doses are
// reference data only
var builtinEntries = []Entry{
	// L-dopa
	{ID: "LDOPA_IR", DisplayName: "Levodopa/Carbidopa", Brands: []string{"Menesit", "Neodopaston"}, Category: CategoryLDOPA, Unit: "mg", Mode: ModeDirect, Factor: 1.0, BaseMultiplier: 1.0, MaxSingleDose: 200, MaxDailyDose: 1200, Warnings: "-", Active: true, ExampleBrand: "Menesit"},
	{ID: "LDOPA_BEN_IR", DisplayName: "Levodopa/Benserazide", Brands: []string{"Madopar"}, Category: CategoryLDOPA, Unit: "mg", Mode: ModeDirect, Factor: 1.0, BaseMultiplier: 1.0, MaxSingleDose: 200, MaxDailyDose: 1200, Warnings: "-", Active: true, ExampleBrand: "Madopar"},
	{ID: "STALEVO", DisplayName: "Levodopa/Carbidopa/Entacapone", Brands: []string{"Stalevo"}, Category: CategoryLDOPA, Unit: "mg", Mode: ModeDirect, Factor: 1.33, BaseMultiplier: 1.0, MaxSingleDose: 150, MaxDailyDose: 1200, Warnings: "L-dopa/COMT combination, enter the levodopa content", Active: true, ExampleBrand: "Menesit"},
	{ID: "DUODOPA", DisplayName: "Duodopa (Levodopa/Carbidopa enteral gel)", Brands: []string{"Duodopa"}, Category: CategoryLDOPA, Unit: "mL/day", Mode: ModeDirect, Factor: 1.11, BaseMultiplier: 1.0, Warnings: "Continuous infusion, settings changed by specialist centres only", Active: true, Enteral: true, ExampleBrand: "Menesit"},

	// Dopamine agonists
	{ID: "ROPINIROLE", DisplayName: "Ropinirole", Brands: []string{"Requip"}, Category: CategoryAgonist, Unit: "mg", Mode: ModeDirect, Factor: 20, BaseMultiplier: 1.0, MaxSingleDose: 15, MaxDailyDose: 15, Warnings: "-", Active: true},
	{ID: "ROPINIROLE_CR", DisplayName: "Ropinirole extended-release", Brands: []string{"Requip CR"}, Category: CategoryAgonist, Unit: "mg", Mode: ModeDirect, Factor: 20, BaseMultiplier: 1.0, MaxSingleDose: 16, MaxDailyDose: 24, Warnings: "Once daily", Active: true, ExtendedRelease: true, LongActing: true,
		Titration: &Titration{Label: "Requip CR", Step: 4, Max: 24, Suffix: " once daily"}},
	{ID: "ROPINIROLE_PATCH", DisplayName: "Ropinirole patch", Brands: []string{"HaruRopi"}, Category: CategoryAgonist, Unit: "patch", Mode: ModeDirect, Factor: 7.5, BaseMultiplier: 1.0, MaxSingleDose: 64, MaxDailyDose: 64, Warnings: "24h continuous, conversion approximated from reference tables", Active: true, LongActing: true,
		Titration: &Titration{Label: "HaruRopi", Rungs: []float64{8, 16, 24, 32, 48, 64}, Max: 64}},
	{ID: "PRAMIPEXOLE", DisplayName: "Pramipexole", Brands: []string{"BI-Sifrol", "Mirapex"}, Category: CategoryAgonist, Unit: "mg", Mode: ModeDirect, Factor: 100, BaseMultiplier: 1.0, MaxSingleDose: 4.5, MaxDailyDose: 4.5, Warnings: "-", Active: true},
	{ID: "PRAMIPEXOLE_ER", DisplayName: "Pramipexole extended-release", Brands: []string{"BI-Sifrol L/A", "Mirapex ER"}, Category: CategoryAgonist, Unit: "mg", Mode: ModeDirect, Factor: 100, BaseMultiplier: 1.0, MaxSingleDose: 4.5, MaxDailyDose: 4.5, Warnings: "24h continuous", Active: true, ExtendedRelease: true, LongActing: true,
		Titration: &Titration{Label: "BI-Sifrol L/A", Step: 0.375, Max: 4.5, Suffix: " once daily"}},
	{ID: "ROTIGOTINE", DisplayName: "Rotigotine patch", Brands: []string{"Neupro"}, Category: CategoryAgonist, Unit: "patch", Mode: ModeDirect, Factor: 13.3, BaseMultiplier: 1.0, MaxSingleDose: 18, MaxDailyDose: 18, Warnings: "24h continuous", Active: true, LongActing: true,
		Titration: &Titration{Label: "Neupro", Rungs: []float64{4.5, 9, 13.5, 18}, Max: 18}},

	// MAO-B inhibitors
	{ID: "SELEGILINE", DisplayName: "Selegiline", Brands: []string{"FP"}, Category: CategoryMAOB, Unit: "mg/day", Mode: ModeDirect, Factor: 10, BaseMultiplier: 1.0, MaxSingleDose: 10, MaxDailyDose: 10, Warnings: "-", Active: true},
	{ID: "RASAGILINE", DisplayName: "Rasagiline", Brands: []string{"Azilect"}, Category: CategoryMAOB, Unit: "mg/day", Mode: ModeDirect, Factor: 100, BaseMultiplier: 1.0, MaxSingleDose: 1, MaxDailyDose: 1, Warnings: "-", Active: true},
	{ID: "SAFINAMIDE", DisplayName: "Safinamide", Brands: []string{"Equfina"}, Category: CategoryMAOB, Unit: "mg/day", Mode: ModeDirect, Factor: 80, BaseMultiplier: 1.0, MaxSingleDose: 100, MaxDailyDose: 100, Warnings: "-", Active: true},

	// COMT inhibitors
	{ID: "ENTACAPONE", DisplayName: "Entacapone", Brands: []string{"Comtan"}, Category: CategoryCOMT, Unit: "mg", Mode: ModeMultiplyBase, BaseMultiplier: 1.33, MaxSingleDose: 200, MaxDailyDose: 1600, Warnings: "Taken with L-dopa", Active: true},
	{ID: "OPICAPONE", DisplayName: "Opicapone", Brands: []string{"Ongentys"}, Category: CategoryCOMT, Unit: "mg", Mode: ModeMultiplyBase, BaseMultiplier: 1.45, MaxSingleDose: 25, MaxDailyDose: 25, Warnings: "Taken with L-dopa", Active: true},

	// Non-dopaminergic, counted in the other bucket
	{ID: "AMANTADINE", DisplayName: "Amantadine", Brands: []string{"Symmetrel", "Parkin"}, Category: CategoryOther, Unit: "mg", Mode: ModeDirect, Factor: 1.0, BaseMultiplier: 1.0, MaxSingleDose: 300, MaxDailyDose: 300, Warnings: "-", Active: true},
	{ID: "ZONISAMIDE", DisplayName: "Zonisamide", Brands: []string{"Trerief"}, Category: CategoryOther, Unit: "mg", Mode: ModeFixed, BaseMultiplier: 1.0, MaxSingleDose: 50, MaxDailyDose: 100, Warnings: "PD indication", Active: true},
	{ID: "ISTRADEFYLLINE", DisplayName: "Istradefylline", Brands: []string{"Nourianz"}, Category: CategoryOther, Unit: "mg", Mode: ModeFixed, BaseMultiplier: 1.0, MaxSingleDose: 20, MaxDailyDose: 40, Warnings: "A2A antagonist", Active: true},
}

// Default builds a fresh copy of the built-in reference table
func Default() *Catalog {
	c, err := New(builtinEntries, BuiltinSource)
	if err != nil {
		panic("catalog: invalid builtin table: " + err.Error())
	}
	return c
}
