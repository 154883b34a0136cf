package report

// SampleText is a canned lab report for trying the analysis without an upload
const SampleText = `BLOOD TEST REPORT
Date: 15/03/2024
Laboratory: HealthCare Diagnostics

COMPLETE BLOOD COUNT (CBC)
Hemoglobin: 11.2 g/dL (Reference: 12.0-15.5)  # Low
White Blood Cells: 12,500 /µL (Reference: 4,000-11,000)  # Slightly High
Platelets: 90,000 /µL (Reference: 150,000-450,000)  # Low
Red Blood Cells: 4.5 M/µL (Reference: 4.0-5.2)
Hematocrit: 35% (Reference: 36-46%)  # Slightly Low

METABOLIC PANEL
Glucose (Fasting): 130 mg/dL (Reference: 70-100)  # High
Creatinine: 1.1 mg/dL (Reference: 0.6-1.2)
BUN: 25 mg/dL (Reference: 7-20)  # Slightly High
Sodium: 142 mEq/L (Reference: 135-145)
Potassium: 2.8 mEq/L (Reference: 3.5-5.0)  # Low

LIPID PROFILE
Total Cholesterol: 220 mg/dL (Reference: <200)  # High
HDL Cholesterol: 38 mg/dL (Reference: >40)  # Low
LDL Cholesterol: 160 mg/dL (Reference: <100)  # High
Triglycerides: 300 mg/dL (Reference: <150)  # High

LIVER FUNCTION
ALT: 80 U/L (Reference: 7-56)  # High
AST: 60 U/L (Reference: 10-40)  # High
Alkaline Phosphatase: 150 U/L (Reference: 44-147)  # Slightly High
Total Bilirubin: 1.3 mg/dL (Reference: 0.3-1.2)  # Slightly High

THYROID FUNCTION
TSH: 6.5 µIU/mL (Reference: 0.4-4.0)  # High
T4: 0.7 ng/dL (Reference: 0.8-1.8)  # Low

Additional Notes:
Some values are outside normal reference ranges.
Immediate attention is required for low platelets, high fasting glucose, and high LDL cholesterol.
`
